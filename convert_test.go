package godbc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/golangcan/godbc/dbc"
	"github.com/golangcan/godbc/document"
	"github.com/golangcan/godbc/internal/testutil"
)

func mustLoad(t *testing.T, src string, opts ...Option) *Database {
	t.Helper()
	res, err := Load([]byte(src), opts...)
	require.NoError(t, err)
	return res.Database
}

func TestFormatIsLoadable(t *testing.T) {
	db := mustLoad(t, testutil.FullDBC)
	text, err := Format(db)
	require.NoError(t, err)

	again := mustLoad(t, string(text))
	require.Len(t, again.Messages, len(db.Messages))
	require.Equal(t, db.Comment, again.Comment)
	require.Equal(t, db.Nodes, again.Nodes)

	text2, err := Format(again)
	require.NoError(t, err)
	require.Equal(t, string(text), string(text2))
}

func TestFormatOutputCodePage(t *testing.T) {
	db := mustLoad(t, string(gbkComment), WithCodePage("gbk"))

	out, err := Format(db, WithOutputCodePage("gbk"))
	require.NoError(t, err)
	require.Contains(t, string(out), "CM_ \"\xd6\xd0\xce\xc4\";")

	again := mustLoad(t, string(out), WithCodePage("gbk"))
	require.Equal(t, "中文", again.Comment)

	_, err = Format(db, WithOutputCodePage("windows-1252"))
	var encErr *dbc.EncodingError
	require.True(t, errors.As(err, &encErr))
	require.Equal(t, "encode", encErr.Op)
	require.Equal(t, '中', encErr.Char)

	_, err = Format(db, WithOutputCodePage("nope"))
	require.ErrorIs(t, err, ErrUnknownCodePage)
}

func TestFormatRejectsUnvalidated(t *testing.T) {
	_, err := Format(&dbc.Database{})
	require.ErrorIs(t, err, dbc.ErrNotValidated)

	_, err = EncodeDocument(&dbc.Database{}, FormatJSON, 2)
	require.ErrorIs(t, err, dbc.ErrNotValidated)
}

func TestDocumentRoundTrip(t *testing.T) {
	db := mustLoad(t, testutil.FullDBC)
	for _, form := range []DocumentFormat{FormatJSON, FormatYAML} {
		t.Run(form.String(), func(t *testing.T) {
			data, err := EncodeDocument(db, form, 2)
			require.NoError(t, err)

			res, err := DecodeDocument(data, form)
			require.NoError(t, err)
			testutil.NoDiagnostics(t, res.Diagnostics)
			require.Equal(t, db, res.Database)
		})
	}
}

func TestDecodeDocumentErrors(t *testing.T) {
	res, err := DecodeDocument(nil, FormatJSON)
	require.ErrorIs(t, err, ErrEmptyInput)
	require.NotNil(t, res)

	_, err = DecodeDocument([]byte(`{"messages": 3}`), FormatJSON)
	require.ErrorIs(t, err, document.ErrInvalidDocument)

	dup := `{"messages": [{"id": 1, "name": "A", "length": 8}, {"id": 1, "name": "B", "length": 8}]}`
	res, err = DecodeDocument([]byte(dup), FormatJSON)
	var verr *dbc.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, dbc.DiagDuplicateMessageID, verr.Code)
	require.Nil(t, res.Database)
}

func TestRecode(t *testing.T) {
	out, err := Recode([]byte("CM_ \"\xd6\xd0\xce\xc4\";"), "gbk", "utf-8")
	require.NoError(t, err)
	require.Equal(t, "CM_ \"中文\";", string(out))

	back, err := Recode(out, "utf-8", "gbk")
	require.NoError(t, err)
	require.Equal(t, "CM_ \"\xd6\xd0\xce\xc4\";", string(back))

	_, err = Recode(out, "utf-8", "windows-1252")
	var encErr *dbc.EncodingError
	require.True(t, errors.As(err, &encErr))

	_, err = Recode(out, "ebcdic-9", "utf-8")
	require.ErrorIs(t, err, ErrUnknownCodePage)
}
