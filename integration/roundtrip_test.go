package integration

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/golangcan/godbc"
	"github.com/golangcan/godbc/internal/testutil"
)

func TestTextRoundTrip(t *testing.T) {
	for name, f := range loadCorpus(t) {
		t.Run(name, func(t *testing.T) {
			opts := []godbc.Option{godbc.WithCodePage(f.CodePage), godbc.WithOutputCodePage(f.CodePage)}
			first, err := godbc.Format(f.Database, opts...)
			require.NoError(t, err)

			res, err := godbc.Load(first, opts...)
			require.NoError(t, err)
			require.Empty(t, res.Diagnostics)

			second, err := godbc.Format(res.Database, opts...)
			require.NoError(t, err)
			require.Equal(t, string(first), string(second))
		})
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	for name, f := range loadCorpus(t) {
		for _, form := range []godbc.DocumentFormat{godbc.FormatJSON, godbc.FormatYAML} {
			t.Run(name+"/"+form.String(), func(t *testing.T) {
				data, err := godbc.EncodeDocument(f.Database, form, 2)
				require.NoError(t, err)

				res, err := godbc.DecodeDocument(data, form)
				require.NoError(t, err)
				require.Equal(t, f.Database, res.Database)
			})
		}
	}
}

func TestMultiplexRangesRoundTrip(t *testing.T) {
	for name, src := range map[string]string{
		"mux ranges":       testutil.MuxRangesDBC,
		"mux shared value": testutil.MuxSharedValueDBC,
	} {
		t.Run(name, func(t *testing.T) {
			res, err := godbc.Load([]byte(src))
			require.NoError(t, err)
			db := res.Database

			text, err := godbc.Format(db)
			require.NoError(t, err)
			again, err := godbc.Load(text)
			require.NoError(t, err)
			require.Equal(t, db, again.Database)

			for _, form := range []godbc.DocumentFormat{godbc.FormatJSON, godbc.FormatYAML} {
				data, err := godbc.EncodeDocument(db, form, 2)
				require.NoError(t, err)
				back, err := godbc.DecodeDocument(data, form)
				require.NoError(t, err, form.String())
				require.Equal(t, db, back.Database, form.String())
			}
		})
	}
}

func TestRecodeMatchesLoad(t *testing.T) {
	f := getFile(t, "body.dbc")
	utf8, err := godbc.Recode(f.Data, f.CodePage, "utf-8")
	require.NoError(t, err)

	res, err := godbc.Load(utf8)
	require.NoError(t, err)
	require.Equal(t, f.Database, res.Database)
}
