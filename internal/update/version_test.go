// SPDX-License-Identifier: MPL-2.0

package update

import (
	"errors"
	"testing"
)

func TestNormalizeVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{
			name: "bare major.minor",
			in:   "4.0",
			want: "v4.0",
		},
		{
			name: "already prefixed",
			in:   "v4.0.1",
			want: "v4.0.1",
		},
		{
			name:    "not a version",
			in:      "banana",
			wantErr: true,
		},
		{
			name:    "empty",
			in:      "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := normalizeVersion(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidVersion) {
					t.Errorf("normalizeVersion(%q) error = %v, want ErrInvalidVersion", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalizeVersion(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("normalizeVersion(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUpdateAvailable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current string
		remote  string
		want    bool
	}{
		{
			name:    "remote newer",
			current: "4.0",
			remote:  "4.1",
			want:    true,
		},
		{
			name:    "remote newer patch",
			current: "v4.0",
			remote:  "v4.0.1",
			want:    true,
		},
		{
			name:    "equal",
			current: "4.0",
			remote:  "4.0",
			want:    false,
		},
		{
			name:    "remote older",
			current: "4.1",
			remote:  "4.0",
			want:    false,
		},
		{
			name:    "malformed remote fails closed",
			current: "4.0",
			remote:  "latest",
			want:    false,
		},
		{
			name:    "malformed current fails closed",
			current: "dev",
			remote:  "99.0",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := updateAvailable(tt.current, tt.remote); got != tt.want {
				t.Errorf("updateAvailable(%q, %q) = %v, want %v", tt.current, tt.remote, got, tt.want)
			}
		})
	}
}
