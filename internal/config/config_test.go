package config

import (
	"os"
	"testing"
)

const (
	envProduction  = "production"
	envDevelopment = "development"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(*Config) bool
	}{
		{
			name: "loads with all required vars",
			envVars: map[string]string{
				"ENV":        envProduction,
				"KEY_SECRET": "secret123",
			},
			wantErr: false,
			check: func(c *Config) bool {
				return c.Environment == envProduction &&
					c.KeySecret == "secret123" &&
					c.PBKDF2Iterations == 210000
			},
		},
		{
			name: "uses defaults when optional vars missing",
			envVars: map[string]string{
				"KEY_SECRET": "secret123",
			},
			wantErr: false,
			check: func(c *Config) bool {
				return c.Environment == envDevelopment &&
					c.StorePath == "facemirror.db" &&
					c.RecentStateCheckLimit == 7
			},
		},
		{
			name:    "fails when KEY_SECRET missing",
			envVars: map[string]string{},
			wantErr: true,
			check:   nil,
		},
		{
			name: "fails when PBKDF2_ITERATIONS below floor",
			envVars: map[string]string{
				"KEY_SECRET":        "secret123",
				"PBKDF2_ITERATIONS": "100",
			},
			wantErr: true,
			check:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for k, v := range tt.envVars {
				if err := os.Setenv(k, v); err != nil {
					t.Fatalf("failed to set env var %s: %v", k, err)
				}
			}

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error: %v", err)
				return
			}

			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("Load() config check failed, got: %+v", cfg)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{envDevelopment, envDevelopment, true},
		{envProduction, envProduction, false},
		{"staging", "staging", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Environment: tt.env}
			if got := c.IsDevelopment(); got != tt.want {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{envProduction, envProduction, true},
		{envDevelopment, envDevelopment, false},
		{"staging", "staging", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Environment: tt.env}
			if got := c.IsProduction(); got != tt.want {
				t.Errorf("IsProduction() = %v, want %v", got, tt.want)
			}
		})
	}
}
