package apiclient_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/luxclient/internal/apiclient"
)

type testFilters struct {
	Search   string   `json:"search,omitempty"`
	Status   string   `json:"status,omitempty"`
	Page     int      `json:"page,omitempty"`
	Limit    int      `json:"limit,omitempty"`
	IsPublic *bool    `json:"isPublic,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Empty    *string  `json:"empty"`
}

func TestParamsFrom(t *testing.T) {
	t.Parallel()

	public := false

	params, err := apiclient.ParamsFrom(testFilters{
		Search:   "rock & roll",
		Page:     3,
		IsPublic: &public,
		Tags:     []string{"music", "live"},
	})
	require.NoError(t, err)

	assert.Equal(t, "isPublic=false&page=3&search=rock+%26+roll&tags=music%2Clive", params.Encode())
}

func TestParamsEncode(t *testing.T) {
	t.Parallel()

	var nilPtr *int

	empty := ""
	limit := 20

	tests := []struct {
		name   string
		params apiclient.Params
		want   string
	}{
		{name: "nil params", params: nil, want: ""},
		{name: "omits absent values", params: apiclient.Params{"a": nil, "b": "", "c": nilPtr, "d": &empty}, want: ""},
		{name: "dereferences pointers", params: apiclient.Params{"limit": &limit}, want: "limit=20"},
		{name: "sorts keys", params: apiclient.Params{"z": "1", "a": "2"}, want: "a=2&z=1"},
		{name: "formats floats", params: apiclient.Params{"lat": 52.52}, want: "lat=52.52"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.params.Encode())
		})
	}
}
