package nutrition

import (
	"regexp"
	"strings"
)

// Category 營養素分類
type Category int

const (
	Beneficial Category = iota
	LessHealthy
)

func (c Category) String() string {
	switch c {
	case Beneficial:
		return "beneficial"
	case LessHealthy:
		return "less_healthy"
	default:
		return "unknown"
	}
}

// 標準營養素名稱（FoodData Central 命名）
const (
	Protein      = "Protein"
	Fiber        = "Fiber, total dietary"
	VitaminC     = "Vitamin C, total ascorbic acid"
	VitaminA     = "Vitamin A, RAE"
	VitaminD     = "Vitamin D (D2 + D3)"
	VitaminK     = "Vitamin K (phylloquinone)"
	Calcium      = "Calcium, Ca"
	Iron         = "Iron, Fe"
	Potassium    = "Potassium, K"
	Sugars       = "Sugars, total including NLEA"
	SaturatedFat = "Fatty acids, total saturated"
	Sodium       = "Sodium, Na"
)

var (
	beneficialNutrients  = []string{Protein, Fiber, VitaminC, VitaminA, VitaminD, VitaminK, Calcium, Iron, Potassium}
	lessHealthyNutrients = []string{Sugars, SaturatedFat, Sodium}

	// 同義名稱合併規則，依序比對
	synonymRules = []struct {
		pattern   *regexp.Regexp
		canonical string
	}{
		{regexp.MustCompile(`(?i)sugars`), Sugars},
		// monounsaturated / polyunsaturated 不算
		{regexp.MustCompile(`(?i)\bsaturated`), SaturatedFat},
		{regexp.MustCompile(`(?i)fiber`), Fiber},
	}

	// 全食物關鍵字：描述中出現即視為健康
	wholeFoodKeywords = []string{
		"apple", "banana", "orange", "strawberry", "blueberry", "raspberry",
		"spinach", "broccoli", "carrot", "kale", "tomato", "avocado",
		"lettuce", "cucumber", "bell pepper", "onion", "garlic",
	}
)

const (
	sugarLimitGrams        = 10.0
	saturatedFatLimitGrams = 5.0
)

// Reason 判定依據
type Reason int

const (
	ReasonOverrideWholeFood Reason = iota
	ReasonNutrientHeuristic
)

func (r Reason) String() string {
	if r == ReasonOverrideWholeFood {
		return "override_whole_food"
	}
	return "nutrient_heuristic"
}

// Verdict 健康判定結果
type Verdict struct {
	Healthy bool   `json:"healthy"`
	Reason  Reason `json:"reason"`
}

// NutrientEntry 原始營養素資料
type NutrientEntry struct {
	Name   string
	Amount float64
	Unit   string
}

// FoodLookupResult 食物查詢結果
type FoodLookupResult struct {
	Description string
	Nutrients   []NutrientEntry
}

// NutrientAmount 已分類的營養素
type NutrientAmount struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Breakdown 依分類整理的營養素，保持原始順序
type Breakdown struct {
	Beneficial  []NutrientAmount `json:"beneficial"`
	LessHealthy []NutrientAmount `json:"less_healthy"`
}

// Find 依標準名稱查找營養素
func (b Breakdown) Find(name string) (NutrientAmount, bool) {
	for _, list := range [][]NutrientAmount{b.Beneficial, b.LessHealthy} {
		for _, n := range list {
			if n.Name == name {
				return n, true
			}
		}
	}
	return NutrientAmount{}, false
}

// CanonicalName 合併同義名稱
func CanonicalName(name string) string {
	for _, rule := range synonymRules {
		if rule.pattern.MatchString(name) {
			return rule.canonical
		}
	}
	return strings.TrimSpace(name)
}

// CategoryOf 取得標準名稱所屬分類
func CategoryOf(canonical string) (Category, bool) {
	for _, n := range beneficialNutrients {
		if strings.EqualFold(n, canonical) {
			return Beneficial, true
		}
	}
	for _, n := range lessHealthyNutrients {
		if strings.EqualFold(n, canonical) {
			return LessHealthy, true
		}
	}
	return 0, false
}

// canonicalSpelling 回傳清單中的標準拼寫
func canonicalSpelling(name string) string {
	for _, list := range [][]string{beneficialNutrients, lessHealthyNutrients} {
		for _, n := range list {
			if strings.EqualFold(n, name) {
				return n
			}
		}
	}
	return name
}

// Categorize 將營養素分類，同一標準名稱只保留第一次出現的數值。
// 舊版以字典寫入，後出現的數值會覆蓋前者（例如 "Fiber, soluble" 蓋掉 "Fiber, total dietary"），這裡刻意保留第一筆。
func Categorize(entries []NutrientEntry) Breakdown {
	var b Breakdown
	seen := make(map[string]bool)
	for _, e := range entries {
		name := canonicalSpelling(CanonicalName(e.Name))
		cat, ok := CategoryOf(name)
		if !ok || seen[name] {
			continue
		}
		seen[name] = true

		amount := NutrientAmount{Name: name, Amount: e.Amount, Unit: strings.ToLower(e.Unit)}
		if cat == Beneficial {
			b.Beneficial = append(b.Beneficial, amount)
		} else {
			b.LessHealthy = append(b.LessHealthy, amount)
		}
	}
	return b
}

// IsWholeFood 描述中是否含有全食物關鍵字
func IsWholeFood(description string) bool {
	desc := strings.ToLower(description)
	for _, kw := range wholeFoodKeywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}

// Judge 判定健康與否：全食物優先，其次營養素規則
func Judge(description string, b Breakdown) Verdict {
	if IsWholeFood(description) {
		return Verdict{Healthy: true, Reason: ReasonOverrideWholeFood}
	}
	return Verdict{Healthy: heuristicHealthy(b), Reason: ReasonNutrientHeuristic}
}

func heuristicHealthy(b Breakdown) bool {
	sugars := gramsOf(b, Sugars)
	satFat := gramsOf(b, SaturatedFat)
	return len(b.Beneficial) > len(b.LessHealthy) &&
		sugars < sugarLimitGrams &&
		satFat < saturatedFatLimitGrams
}

// gramsOf 取得營養素克數，缺少時為 0
func gramsOf(b Breakdown, name string) float64 {
	n, ok := b.Find(name)
	if !ok {
		return 0
	}
	switch n.Unit {
	case "mg":
		return n.Amount / 1000
	case "µg", "ug", "mcg":
		return n.Amount / 1_000_000
	default:
		return n.Amount
	}
}

// Classify 對查詢結果分類並判定
func Classify(food FoodLookupResult) (Breakdown, Verdict) {
	b := Categorize(food.Nutrients)
	return b, Judge(food.Description, b)
}
