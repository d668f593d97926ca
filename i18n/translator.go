package i18n

// Translator retrieves localized messages for issue codes and degradation
// flag kinds. data provides optional metadata to embed in the message (for
// example, "expected" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		// issues
		"invalid_type":     "invalid type",
		"required":         "required property missing",
		"invalid_enum":     "no enum variant matches",
		"ambiguous_enum":   "value matches several enum variants",
		"arity":            "wrong number of tuple items",
		"unknown_type_ref": "schema references an unknown type",
		"union_exhausted":  "no union option matches",
		"parse_error":      "parse error",
		"empty_input":      "empty input",
		"budget_exceeded":  "evaluation budget exceeded",
		"max_depth":        "maximum depth exceeded",
		"input_too_large":  "input exceeds the size limit",
		"truncated":        "truncated",
		// degradation flags
		"fixed_json":          "string parsed after quote/bracket repair",
		"picked_ambiguous":    "picked one of several values found in the text",
		"union_resolved":      "union member chosen over other viable members",
		"enum_normalized":     "enum matched after case/punctuation folding",
		"duplicate_key":       "duplicate key, first occurrence used",
		"extra_key":           "unknown field ignored",
		"default_from_schema": "missing value filled from declared default",
		"missing_null":        "optional field missing, used null",
		"string_to_number":    "number parsed from string",
		"string_to_bool":      "bool parsed from string",
		"json_to_string":      "non-string value rendered as text",
		"float_to_int":        "numeric value truncated or rounded",
		"enum_from_substring": "enum variant found inside longer text",
		"implied_key":         "single-field object built from a bare value",
		"partial_missing":     "required field absent in partial input, used null",
		"array_item_dropped":  "list element failed and was dropped",
		"map_entry_dropped":   "map entry failed and was dropped",
		"optional_fallback":   "substituted null for unparseable value",
		"single_to_list":      "coerced single value into single-element list",
		"default_substituted": "substituted zero value for unparseable value",
	},
	"ja": {
		"invalid_type":     "型が不正です",
		"required":         "必須プロパティが不足しています",
		"invalid_enum":     "一致する列挙値がありません",
		"ambiguous_enum":   "複数の列挙値に一致します",
		"arity":            "タプルの要素数が一致しません",
		"unknown_type_ref": "スキーマが未定義の型を参照しています",
		"union_exhausted":  "一致するユニオンの選択肢がありません",
		"parse_error":      "解析エラー",
		"empty_input":      "入力が空です",
		"budget_exceeded":  "評価回数の上限を超えました",
		"max_depth":        "最大深度を超えました",
		"input_too_large":  "入力がサイズ上限を超えています",
		"truncated":        "打ち切られました",

		"fixed_json":          "引用符や括弧を修復して解析しました",
		"picked_ambiguous":    "テキスト中の複数の値から一つを選びました",
		"union_resolved":      "他の候補よりこのユニオン要素を選びました",
		"enum_normalized":     "大文字小文字や記号を正規化して列挙値に一致しました",
		"duplicate_key":       "キーが重複しています（最初の値を使用）",
		"extra_key":           "未知のフィールドを無視しました",
		"default_from_schema": "宣言されたデフォルト値で補いました",
		"missing_null":        "任意フィールドが無いため null を使用しました",
		"string_to_number":    "文字列から数値に変換しました",
		"string_to_bool":      "文字列から真偽値に変換しました",
		"json_to_string":      "文字列以外の値をテキスト化しました",
		"float_to_int":        "数値を切り捨て・丸めました",
		"enum_from_substring": "長いテキストの中から列挙値を見つけました",
		"implied_key":         "単一フィールドのオブジェクトを値から構築しました",
		"partial_missing":     "部分入力のため必須フィールドに null を使用しました",
		"array_item_dropped":  "変換できないリスト要素を除外しました",
		"map_entry_dropped":   "変換できないマップ要素を除外しました",
		"optional_fallback":   "解析できない値の代わりに null を使用しました",
		"single_to_list":      "単一の値を要素一つのリストにしました",
		"default_substituted": "解析できない値の代わりにゼロ値を使用しました",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	if msg, ok := dictionaries[t.lang][code]; ok {
		return msg
	}
	if msg, ok := dictionaries["en"][code]; ok {
		return msg
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
