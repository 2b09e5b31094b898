package items

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlexibleDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2023-05-01T10:00:00Z", time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2023-05-01T10:00:00+02:00", time.Date(2023, 5, 1, 10, 0, 0, 0, time.FixedZone("", 2*3600))},
		{"2023-05-01T10:00:00", time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2023-05-01T10:00", time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)},
		{"2023-05-01", time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"2023-05-01T10:00:00.123456", time.Date(2023, 5, 1, 10, 0, 0, 123456000, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseFlexibleDate(tc.in)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "got %v, want %v", got, tc.want)
		})
	}
}

func TestParseFlexibleDateRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "  ", "01/05/2023", "yesterday", "2023-13-45"} {
		_, err := parseFlexibleDate(in)
		assert.Error(t, err, "input %q", in)
	}
}
