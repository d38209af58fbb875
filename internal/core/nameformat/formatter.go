package nameformat

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// ParamSource はシステム設定パラメータの読み取り口です。
// 未設定のキーは空文字列で返します。
type ParamSource interface {
	Param(ctx context.Context, key string) (string, error)
}

// Parts は構造化された氏名です。
type Parts struct {
	First    string
	Last     string
	Nickname string
}

// Formatter はシステム設定を参照して氏名の合成を行います。
// 設定は呼び出しごとに読み取り、キャッシュしません。
type Formatter struct {
	params ParamSource
}

// NewFormatter は Formatter を生成します。
func NewFormatter(params ParamSource) *Formatter {
	return &Formatter{params: params}
}

// SystemFormat はシステム設定のフォーマットを返します。未設定または未知の値は western です。
func (f *Formatter) SystemFormat(ctx context.Context) (Format, error) {
	format, err := f.ConfiguredFormat(ctx)
	if err != nil {
		return "", err
	}
	if !format.IsSystemFormat() {
		return FormatWestern, nil
	}
	return format, nil
}

// ConfiguredFormat はシステム設定に保存された値をそのまま返します。未設定時は空です。
func (f *Formatter) ConfiguredFormat(ctx context.Context) (Format, error) {
	raw, err := f.param(ctx, ParamFormat)
	if err != nil {
		return "", err
	}
	return ParseFormat(raw), nil
}

// EffectiveFormat は社員単位の指定があればそれを、なければシステム設定を返します。
func (f *Formatter) EffectiveFormat(ctx context.Context, override Format) (Format, error) {
	if override = ParseFormat(string(override)); override != FormatDefault {
		return override, nil
	}
	return f.SystemFormat(ctx)
}

// SystemPattern はシステム設定から合成パターンを解決します。
func (f *Formatter) SystemPattern(ctx context.Context) (string, error) {
	format, err := f.SystemFormat(ctx)
	if err != nil {
		return "", err
	}

	if format == FormatCustom {
		custom, err := f.param(ctx, ParamCustomPattern)
		if err != nil {
			return "", err
		}
		if custom = strings.TrimSpace(custom); custom != "" {
			return custom, nil
		}
	}

	if p, ok := BuiltinPattern(format); ok {
		return p, nil
	}
	p, _ := BuiltinPattern(FormatWestern)
	return p, nil
}

// Pattern は override を考慮して合成パターンを解決します。
func (f *Formatter) Pattern(ctx context.Context, override Format) (string, error) {
	switch override = ParseFormat(string(override)); override {
	case FormatDefault:
		return f.SystemPattern(ctx)
	case FormatCustom:
		custom, err := f.param(ctx, ParamCustomPattern)
		if err != nil {
			return "", err
		}
		if custom = strings.TrimSpace(custom); custom != "" {
			return custom, nil
		}
		return f.SystemPattern(ctx)
	}

	if p, ok := BuiltinPattern(override); ok {
		return p, nil
	}
	return f.SystemPattern(ctx)
}

// Compose は氏名を合成します。
func (f *Formatter) Compose(ctx context.Context, parts Parts, override Format) (string, error) {
	pattern, err := f.Pattern(ctx, override)
	if err != nil {
		return "", err
	}
	return Render(pattern, parts), nil
}

func (f *Formatter) param(ctx context.Context, key string) (string, error) {
	if f == nil || f.params == nil {
		return "", nil
	}
	v, err := f.params.Param(ctx, key)
	if err != nil {
		return "", fmt.Errorf("nameformat: read %s: %w", key, err)
	}
	return v, nil
}

// Render はパターンに氏名を埋め込み、欠けた要素による余分な空白を取り除きます。
func Render(pattern string, parts Parts) string {
	r := strings.NewReplacer(
		PlaceholderFirstName, strings.TrimSpace(parts.First),
		PlaceholderLastName, strings.TrimSpace(parts.Last),
		PlaceholderNickname, strings.TrimSpace(parts.Nickname),
	)
	return strings.Join(strings.Fields(r.Replace(pattern)), " ")
}

// Split は氏名文字列を最初の空白で二分割します。
// 3 語以上の氏名は後半にまとめられます (ミドルネームは分解しません)。
func Split(fullName string, format Format) Parts {
	collapsed := strings.Join(strings.Fields(fullName), " ")
	if collapsed == "" {
		return Parts{}
	}

	head, tail, found := strings.Cut(collapsed, " ")
	if !found {
		return Parts{First: head}
	}
	if format == FormatAsian {
		return Parts{First: tail, Last: head}
	}
	return Parts{First: head, Last: tail}
}

var placeholderPattern = regexp.MustCompile(`\{[^{}]*\}`)

// ValidatePattern はパターンが既知のプレースホルダのみを含むか検証します。
func ValidatePattern(pattern string) error {
	for _, ph := range placeholderPattern.FindAllString(pattern, -1) {
		switch ph {
		case PlaceholderFirstName, PlaceholderLastName, PlaceholderNickname:
		default:
			return fmt.Errorf("nameformat: unknown placeholder %s", ph)
		}
	}
	return nil
}
