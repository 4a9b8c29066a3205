package wealth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJsonObjectWriter(t *testing.T) {
	tests := []struct {
		name  string
		build func(w *jsonObjectWriter)
		want  string
	}{
		{"empty", func(w *jsonObjectWriter) {}, `{}`},
		{"ordered", func(w *jsonObjectWriter) {
			w.Append("symbol", "TCS").Append("units", Q(3)).Append("a", 0)
		}, `{"symbol":"TCS","units":"3","a":0}`},
		{"optional", func(w *jsonObjectWriter) {
			w.Optional("isin", "")
			w.Optional("xirr", 0)
			w.Optional("sector", "IT")
		}, `{"sector":"IT"}`},
		{"optional money and quantity", func(w *jsonObjectWriter) {
			w.Optional("zero", INR(0))
			w.Optional("none", Q(0))
			w.Optional("nil", (*Verdict)(nil))
			w.Optional("units", Q(1.5))
		}, `{"units":"1.5"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w jsonObjectWriter
			tt.build(&w)
			got, err := w.MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestJsonObjectWriter_Error(t *testing.T) {
	var w jsonObjectWriter
	w.Append("bad", make(chan int)).Append("ignored", 1)
	_, err := w.MarshalJSON()
	assert.ErrorContains(t, err, `"bad"`)
}
