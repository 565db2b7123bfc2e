package dbc

import "github.com/golangcan/godbc/internal/types"

// Diagnostic represents an issue found while loading a database.
type Diagnostic = types.Diagnostic

// Severity indicates how serious a diagnostic is. Lower values are more severe.
type Severity = types.Severity

// StrictnessLevel controls which diagnostics are reported.
type StrictnessLevel = types.StrictnessLevel

// DiagnosticConfig controls strictness and diagnostic filtering.
type DiagnosticConfig = types.DiagnosticConfig

// Severity levels.
const (
	SeverityFatal   = types.SeverityFatal
	SeveritySevere  = types.SeveritySevere
	SeverityError   = types.SeverityError
	SeverityMinor   = types.SeverityMinor
	SeverityStyle   = types.SeverityStyle
	SeverityWarning = types.SeverityWarning
	SeverityInfo    = types.SeverityInfo
)

// Strictness levels.
const (
	StrictnessStrict     = types.StrictnessStrict
	StrictnessNormal     = types.StrictnessNormal
	StrictnessPermissive = types.StrictnessPermissive
	StrictnessSilent     = types.StrictnessSilent
)

// DefaultConfig returns the default diagnostic configuration.
func DefaultConfig() DiagnosticConfig { return types.DefaultConfig() }

// StrictConfig returns a configuration in which every reported warning fails
// the load.
func StrictConfig() DiagnosticConfig { return types.StrictConfig() }

// PermissiveConfig returns a configuration that ignores dangling references
// and unsupported sections.
func PermissiveConfig() DiagnosticConfig { return types.PermissiveConfig() }

// Diagnostic codes. See the package documentation of each phase for when
// they are emitted.
const (
	DiagUndecodable            = types.DiagUndecodable
	DiagLexError               = types.DiagLexError
	DiagParseError             = types.DiagParseError
	DiagSectionUnsupported     = types.DiagSectionUnsupported
	DiagInvalidNumber          = types.DiagInvalidNumber
	DiagDuplicateMessageID     = types.DiagDuplicateMessageID
	DiagDuplicateMessageName   = types.DiagDuplicateMessageName
	DiagDuplicateSignal        = types.DiagDuplicateSignal
	DiagDuplicateNode          = types.DiagDuplicateNode
	DiagDuplicateValueTable    = types.DiagDuplicateValueTable
	DiagDuplicateEnvVar        = types.DiagDuplicateEnvVar
	DiagDuplicateSignalType    = types.DiagDuplicateSignalType
	DiagDuplicateAttributeDef  = types.DiagDuplicateAttributeDef
	DiagDuplicateValue         = types.DiagDuplicateValue
	DiagBitRangeOverflow       = types.DiagBitRangeOverflow
	DiagFloatSizeInvalid       = types.DiagFloatSizeInvalid
	DiagMultiplexorMissing     = types.DiagMultiplexorMissing
	DiagMultiplexorAmbiguous   = types.DiagMultiplexorAmbiguous
	DiagMultiplexorUnknown     = types.DiagMultiplexorUnknown
	DiagMultiplexRangeInvalid  = types.DiagMultiplexRangeInvalid
	DiagMultiplexRangeOverlap  = types.DiagMultiplexRangeOverlap
	DiagMultiplexCycle         = types.DiagMultiplexCycle
	DiagAttributeOutOfDomain   = types.DiagAttributeOutOfDomain
	DiagAttributeDomainInvalid = types.DiagAttributeDomainInvalid
	DiagCommentDangling        = types.DiagCommentDangling
	DiagCommentDuplicate       = types.DiagCommentDuplicate
	DiagAttributeUnknown       = types.DiagAttributeUnknown
	DiagAttributeDangling      = types.DiagAttributeDangling
	DiagAttributeKindMismatch  = types.DiagAttributeKindMismatch
	DiagAttributeDuplicate     = types.DiagAttributeDuplicate
	DiagValueTableDangling     = types.DiagValueTableDangling
	DiagValueDescDangling      = types.DiagValueDescDangling
	DiagSignalTypeDangling     = types.DiagSignalTypeDangling
	DiagValueTypeDangling      = types.DiagValueTypeDangling
	DiagSignalGroupDangling    = types.DiagSignalGroupDangling
	DiagTransmitterDangling    = types.DiagTransmitterDangling
	DiagEnvVarDataDangling     = types.DiagEnvVarDataDangling
	DiagMultiplexDangling      = types.DiagMultiplexDangling
	DiagValueTypeInvalid       = types.DiagValueTypeInvalid
	DiagSignalGroupMember      = types.DiagSignalGroupMember
)
