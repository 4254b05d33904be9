package services

import (
	"context"
	"math"
	"testing"
)

func TestPageRequestNormalize(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{"defaults", PageRequest{}, PageRequest{Page: 1, Limit: DefaultPageLimit}},
		{"negative", PageRequest{Page: -3, Limit: -1}, PageRequest{Page: 1, Limit: DefaultPageLimit}},
		{"limit capped", PageRequest{Page: 2, Limit: 500}, PageRequest{Page: 2, Limit: MaxPageLimit}},
		{"page capped", PageRequest{Page: math.MaxInt, Limit: MaxPageLimit}, PageRequest{Page: MaxPage, Limit: MaxPageLimit}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.normalize()
			if got != tc.want {
				t.Fatalf("normalize(%+v) = %+v, want %+v", tc.in, got, tc.want)
			}
			if off := got.offset(); off < 0 || off > math.MaxInt32 {
				t.Fatalf("offset = %d, out of range", off)
			}
		})
	}
}

func TestListHugePageIsEmpty(t *testing.T) {
	f := newFixture(t)
	host := f.host(t, "host_one")
	f.tournament(t, host.ID, f.input(10))

	list, page, err := f.tournaments.List(context.Background(), TournamentFilter{PageRequest: PageRequest{Page: math.MaxInt}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 || page.CurrentPage != MaxPage || page.TotalItems != 1 {
		t.Fatalf("list = %d items, pagination %+v", len(list), page)
	}
}
