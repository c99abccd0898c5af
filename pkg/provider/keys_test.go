/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package provider

import "testing"

func TestAPIKeyEnvVarName(t *testing.T) {
	tests := []struct {
		name         string
		providerType string
		want         string
	}{
		{"openai", "openai", "OPENAI_API_KEY"},
		{"azure", "azure", "AZURE_OPENAI_API_KEY"},
		{"bedrock has no single api key env var", "bedrock", ""},
		{"unknown type", "unknown", ""},
		{"empty type", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := APIKeyEnvVarName(tt.providerType); got != tt.want {
				t.Errorf("APIKeyEnvVarName(%q) = %q, want %q", tt.providerType, got, tt.want)
			}
		})
	}
}
