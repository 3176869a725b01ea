package service

import (
	"testing"

	"github.com/google/uuid"
)

func TestSameBankIDComparesValues(t *testing.T) {
	id := uuid.New()
	other := uuid.New()
	copied := id

	cases := []struct {
		name string
		a, b *uuid.UUID
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil vs set", nil, &id, false},
		{"set vs nil", &id, nil, false},
		{"same pointer", &id, &id, true},
		{"distinct pointers same value", &id, &copied, true},
		{"different values", &id, &other, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sameBankID(tc.a, tc.b); got != tc.want {
				t.Fatalf("sameBankID = %v, want %v", got, tc.want)
			}
		})
	}
}
