package repository

import (
	"errors"
	"testing"
)

func TestMapItemDuplicate(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{
			"item number key",
			errors.New("Error 1062 (23000): Duplicate entry 'IT-100' for key 'item_numbers.uq_item_numbers_number'"),
			ErrDuplicateItemNumber,
		},
		{
			"unnamed duplicate falls back to description",
			errors.New("Error 1062 (23000): Duplicate entry"),
			ErrDuplicateDescription,
		},
		{
			"unrelated error passes through",
			errors.New("Error 1146 (42S02): Table 'inventory.item_numbers' doesn't exist"),
			nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapItemDuplicate(tc.err)
			if tc.want == nil {
				if got != tc.err {
					t.Fatalf("expected the original error back, got %v", got)
				}
				return
			}
			if !errors.Is(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
