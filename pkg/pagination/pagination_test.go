package pagination

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name   string
		params Params
		want   Page
	}{
		{
			name:   "defaults",
			params: Params{},
			want:   Page{Number: 1, Limit: DefaultLimit, Offset: 0},
		},
		{
			name:   "second page",
			params: Params{Page: 2, Limit: 8},
			want:   Page{Number: 2, Limit: 8, Offset: 8},
		},
		{
			name:   "limit capped",
			params: Params{Page: 1, Limit: 500},
			want:   Page{Number: 1, Limit: MaxLimit, Offset: 0},
		},
		{
			name:   "negative page",
			params: Params{Page: -3, Limit: 10},
			want:   Page{Number: 1, Limit: 10, Offset: 0},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.params)
			if got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestTotalPages(t *testing.T) {
	if got := TotalPages(17, 8); got != 3 {
		t.Fatalf("expected 3 pages, got %d", got)
	}
	if got := TotalPages(16, 8); got != 2 {
		t.Fatalf("expected 2 pages, got %d", got)
	}
	if got := TotalPages(0, 8); got != 0 {
		t.Fatalf("expected 0 pages, got %d", got)
	}
}
