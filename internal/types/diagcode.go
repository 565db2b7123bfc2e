package types

// Diagnostic codes emitted by the decoding, lexing, parsing and validation phases.
// Centralizing these prevents silent breakage from typos in string literals.

// Decoding diagnostic codes.
const (
	DiagUndecodable = "undecodable-bytes"
)

// Lexer and parser diagnostic codes.
const (
	DiagLexError           = "lex-error"
	DiagParseError         = "parse-error"
	DiagSectionUnsupported = "section-unsupported"
	DiagInvalidNumber      = "invalid-number"
)

// Validation hard error codes.
const (
	DiagDuplicateMessageID     = "duplicate-message-id"
	DiagDuplicateMessageName   = "duplicate-message-name"
	DiagDuplicateSignal        = "duplicate-signal"
	DiagDuplicateNode          = "duplicate-node"
	DiagDuplicateValueTable    = "duplicate-value-table"
	DiagDuplicateEnvVar        = "duplicate-env-var"
	DiagDuplicateSignalType    = "duplicate-signal-type"
	DiagDuplicateAttributeDef  = "duplicate-attribute-definition"
	DiagDuplicateValue         = "duplicate-value"
	DiagBitRangeOverflow       = "bit-range-overflow"
	DiagFloatSizeInvalid       = "float-size-invalid"
	DiagMultiplexorMissing     = "multiplexor-missing"
	DiagMultiplexorAmbiguous   = "multiplexor-ambiguous"
	DiagMultiplexorUnknown     = "multiplexor-unknown"
	DiagMultiplexRangeInvalid  = "multiplex-range-invalid"
	DiagMultiplexRangeOverlap  = "multiplex-range-overlap"
	DiagMultiplexCycle         = "multiplex-cycle"
	DiagAttributeOutOfDomain   = "attribute-out-of-domain"
	DiagAttributeDomainInvalid = "attribute-domain-invalid"
)

// Validation warning codes.
const (
	DiagCommentDangling       = "comment-dangling"
	DiagCommentDuplicate      = "comment-duplicate"
	DiagAttributeUnknown      = "attribute-unknown"
	DiagAttributeDangling     = "attribute-dangling"
	DiagAttributeKindMismatch = "attribute-kind-mismatch"
	DiagAttributeDuplicate    = "attribute-duplicate"
	DiagValueTableDangling    = "value-table-dangling"
	DiagValueDescDangling     = "value-description-dangling"
	DiagSignalTypeDangling    = "signal-type-dangling"
	DiagValueTypeDangling     = "value-type-dangling"
	DiagSignalGroupDangling   = "signal-group-dangling"
	DiagTransmitterDangling   = "transmitter-dangling"
	DiagEnvVarDataDangling    = "env-var-data-dangling"
	DiagMultiplexDangling     = "multiplex-dangling"
	DiagValueTypeInvalid      = "value-type-invalid"
	DiagSignalGroupMember     = "signal-group-member-dangling"
)

// AllDiagnosticCodes returns all known diagnostic codes grouped by phase.
func AllDiagnosticCodes() []DiagCodeInfo {
	return []DiagCodeInfo{
		// Decoding
		{Code: DiagUndecodable, Phase: "codepage"},
		// Lexer and parser
		{Code: DiagLexError, Phase: "lexer"},
		{Code: DiagParseError, Phase: "parser"},
		{Code: DiagSectionUnsupported, Phase: "parser"},
		{Code: DiagInvalidNumber, Phase: "parser"},
		// Validation, hard
		{Code: DiagDuplicateMessageID, Phase: "resolver"},
		{Code: DiagDuplicateMessageName, Phase: "resolver"},
		{Code: DiagDuplicateSignal, Phase: "resolver"},
		{Code: DiagDuplicateNode, Phase: "resolver"},
		{Code: DiagDuplicateValueTable, Phase: "resolver"},
		{Code: DiagDuplicateEnvVar, Phase: "resolver"},
		{Code: DiagDuplicateSignalType, Phase: "resolver"},
		{Code: DiagDuplicateAttributeDef, Phase: "resolver"},
		{Code: DiagDuplicateValue, Phase: "resolver"},
		{Code: DiagBitRangeOverflow, Phase: "resolver"},
		{Code: DiagFloatSizeInvalid, Phase: "resolver"},
		{Code: DiagMultiplexorMissing, Phase: "resolver"},
		{Code: DiagMultiplexorAmbiguous, Phase: "resolver"},
		{Code: DiagMultiplexorUnknown, Phase: "resolver"},
		{Code: DiagMultiplexRangeInvalid, Phase: "resolver"},
		{Code: DiagMultiplexRangeOverlap, Phase: "resolver"},
		{Code: DiagMultiplexCycle, Phase: "resolver"},
		{Code: DiagAttributeOutOfDomain, Phase: "resolver"},
		{Code: DiagAttributeDomainInvalid, Phase: "resolver"},
		// Validation, warnings
		{Code: DiagCommentDangling, Phase: "resolver"},
		{Code: DiagCommentDuplicate, Phase: "resolver"},
		{Code: DiagAttributeUnknown, Phase: "resolver"},
		{Code: DiagAttributeDangling, Phase: "resolver"},
		{Code: DiagAttributeKindMismatch, Phase: "resolver"},
		{Code: DiagAttributeDuplicate, Phase: "resolver"},
		{Code: DiagValueTableDangling, Phase: "resolver"},
		{Code: DiagValueDescDangling, Phase: "resolver"},
		{Code: DiagSignalTypeDangling, Phase: "resolver"},
		{Code: DiagValueTypeDangling, Phase: "resolver"},
		{Code: DiagSignalGroupDangling, Phase: "resolver"},
		{Code: DiagTransmitterDangling, Phase: "resolver"},
		{Code: DiagEnvVarDataDangling, Phase: "resolver"},
		{Code: DiagMultiplexDangling, Phase: "resolver"},
		{Code: DiagValueTypeInvalid, Phase: "resolver"},
		{Code: DiagSignalGroupMember, Phase: "resolver"},
	}
}

// DiagCodeInfo describes a diagnostic code and the phase that emits it.
type DiagCodeInfo struct {
	Code  string
	Phase string
}
