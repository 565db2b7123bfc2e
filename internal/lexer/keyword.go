package lexer

import "sort"

// keywords is the sorted keyword table for binary search.
// IMPORTANT: This slice MUST remain sorted by byte order of text.
// Underscore (95) sorts after uppercase letters (65-90).
var keywords = []struct {
	text string
	kind TokenKind
}{
	{"BA_", TokKwAttr},
	{"BA_DEF_", TokKwAttrDef},
	{"BA_DEF_DEF_", TokKwAttrDefault},
	{"BA_DEF_DEF_REL_", TokKwAttrDefaultRel},
	{"BA_DEF_REL_", TokKwAttrDefRel},
	{"BA_DEF_SGTYPE_", TokKwAttrDefSigType},
	{"BA_REL_", TokKwAttrRel},
	{"BA_SGTYPE_", TokKwAttrSigType},
	{"BO_", TokKwMessage},
	{"BO_TX_BU_", TokKwMessageTx},
	{"BS_", TokKwBitTiming},
	{"BU_", TokKwNodes},
	{"BU_BO_REL_", TokKwNodeMessageRel},
	{"BU_EV_REL_", TokKwNodeEnvVarRel},
	{"BU_SG_REL_", TokKwNodeSignalRel},
	{"CAT_", TokKwCategory},
	{"CAT_DEF_", TokKwCategoryDef},
	{"CM_", TokKwComment},
	{"ENVVAR_DATA_", TokKwEnvVarData},
	{"EV_", TokKwEnvVar},
	{"EV_DATA_", TokKwEvData},
	{"FILTER", TokKwFilter},
	{"NS_", TokKwNewSymbols},
	{"NS_DESC_", TokKwNewSymbolsDesc},
	{"SGTYPE_", TokKwSignalType},
	{"SGTYPE_VAL_", TokKwSignalTypeVal},
	{"SG_", TokKwSignal},
	{"SG_MUL_VAL_", TokKwMuxValues},
	{"SIGTYPE_VALTYPE_", TokKwSigTypeValType},
	{"SIG_GROUP_", TokKwSignalGroup},
	{"SIG_TYPE_REF_", TokKwSignalTypeRef},
	{"SIG_VALTYPE_", TokKwSignalValType},
	{"VAL_", TokKwValues},
	{"VAL_TABLE_", TokKwValueTable},
	{"VERSION", TokKwVersion},
}

// LookupKeyword returns the TokenKind for a keyword, or (TokError, false) if not found.
func LookupKeyword(text string) (TokenKind, bool) {
	idx := sort.Search(len(keywords), func(i int) bool {
		return keywords[i].text >= text
	})
	if idx < len(keywords) && keywords[idx].text == text {
		return keywords[idx].kind, true
	}
	return TokError, false
}

// KeywordText returns the source spelling of a keyword kind.
func KeywordText(kind TokenKind) (string, bool) {
	for _, kw := range keywords {
		if kw.kind == kind {
			return kw.text, true
		}
	}
	return "", false
}
