package nutrition

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Report 單一食物的分析結果
type Report struct {
	FoodName  string    `json:"food_name"`
	FdcID     int       `json:"fdc_id"`
	Verdict   Verdict   `json:"verdict"`
	Breakdown Breakdown `json:"breakdown"`
}

// ShortName 取標準名稱第一個逗號前的部分
func ShortName(canonical string) string {
	if i := strings.Index(canonical, ","); i >= 0 {
		return canonical[:i]
	}
	return canonical
}

// FormatAmount 例如 2.82g、0mg
func FormatAmount(n NutrientAmount) string {
	return strconv.FormatFloat(n.Amount, 'f', -1, 64) + n.Unit
}

// Render 產生給使用者的文字報告
func (r *Report) Render() string {
	var sb strings.Builder

	if r.Verdict.Healthy {
		fmt.Fprintf(&sb, "✅ %s appears to be a healthy choice.\n\n", r.FoodName)
		if r.Verdict.Reason == ReasonOverrideWholeFood {
			sb.WriteString("It's a whole food like a fruit or vegetable. While it may contain natural sugars, it's packed with vitamins, fiber, and other essential nutrients.\n")
		} else {
			sb.WriteString("It's a good source of several important nutrients and is relatively low in sugar and saturated fat.\n")
		}
	} else {
		fmt.Fprintf(&sb, "⚠️ %s might be a less healthy choice, best enjoyed in moderation.\n\n", r.FoodName)
		sb.WriteString("It may be high in sugars, saturated fats, or sodium, with fewer beneficial nutrients.\n")
	}

	sb.WriteString("\n--- Nutrient Summary (per 100g) ---\n")
	writeSection(&sb, "👍 Key Beneficial Nutrients:", r.Breakdown.Beneficial)
	writeSection(&sb, "👎 Nutrients to be Mindful Of:", r.Breakdown.LessHealthy)

	return sb.String()
}

func writeSection(sb *strings.Builder, header string, list []NutrientAmount) {
	if len(list) == 0 {
		return
	}
	sb.WriteString("\n" + header + "\n")
	for _, n := range list {
		fmt.Fprintf(sb, "   - %s: %s\n", ShortName(n.Name), FormatAmount(n))
	}
}

// displayName 首字大寫、其餘小寫
func displayName(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
