package nameformat

import "strings"

// Format は氏名の語順・パターンを表します。
type Format string

const (
	// FormatDefault はシステム設定に従うことを表します。
	FormatDefault Format = ""
	FormatWestern Format = "western"
	FormatAsian   Format = "asian"
	FormatSpanish Format = "spanish"
	FormatArabic  Format = "arabic"
	FormatCustom  Format = "custom"
)

// システム設定パラメータのキーです。
const (
	ParamFormat        = "user_name_extended.format"
	ParamCustomPattern = "user_name_extended.custom_pattern"
)

// パターン中で利用できるプレースホルダです。
const (
	PlaceholderFirstName = "{first_name}"
	PlaceholderLastName  = "{last_name}"
	PlaceholderNickname  = "{nickname}"
)

var builtinPatterns = map[Format]string{
	FormatWestern: PlaceholderFirstName + " " + PlaceholderLastName,
	FormatAsian:   PlaceholderLastName + " " + PlaceholderFirstName,
	FormatSpanish: PlaceholderFirstName + " " + PlaceholderLastName,
	FormatArabic:  PlaceholderFirstName + " " + PlaceholderLastName,
}

// ParseFormat は前後の空白を除去し小文字化した Format を返します。
func ParseFormat(raw string) Format {
	return Format(strings.ToLower(strings.TrimSpace(raw)))
}

// BuiltinPattern は組み込みフォーマットのパターンを返します。
func BuiltinPattern(f Format) (string, bool) {
	p, ok := builtinPatterns[f]
	return p, ok
}

// IsSystemFormat はシステム設定として保存可能なフォーマットかを判定します。
func (f Format) IsSystemFormat() bool {
	if f == FormatCustom {
		return true
	}
	_, ok := builtinPatterns[f]
	return ok
}

// IsRecordFormat は社員単位で指定可能なフォーマットかを判定します。
func (f Format) IsRecordFormat() bool {
	switch f {
	case FormatDefault, FormatWestern, FormatAsian:
		return true
	default:
		return false
	}
}

func (f Format) String() string {
	return string(f)
}
