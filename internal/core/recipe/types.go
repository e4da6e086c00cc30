package recipe

import (
	"food-assistant/internal/core/spoonacular"
)

// Summary 標準化後的食譜
type Summary struct {
	ID             int               `json:"id"`
	Title          string            `json:"title"`
	Servings       spoonacular.Value `json:"servings"`
	ReadyInMinutes spoonacular.Value `json:"ready_in_minutes"`
	SourceURL      string            `json:"source_url"`
	Ingredients    []string          `json:"ingredients"`
	Instructions   string            `json:"instructions"`
}

// Request 找食譜的條件
type Request struct {
	Ingredients []string `json:"ingredients"`
	Wish        string   `json:"wish"`
}

// Normalize 去除空白與空項目
func (r Request) Normalize() Request {
	out := Request{Wish: trim(r.Wish)}
	for _, ing := range r.Ingredients {
		if s := trim(ing); s != "" {
			out.Ingredients = append(out.Ingredients, s)
		}
	}
	return out
}

// Empty 沒有任何條件時改用隨機食譜
func (r Request) Empty() bool {
	return len(r.Ingredients) == 0 && r.Wish == ""
}

// HealthFacts 健康說明所需資料
type HealthFacts struct {
	RecipeID    int               `json:"recipe_id"`
	Title       string            `json:"title"`
	HealthScore float64           `json:"health_score"`
	Calories    spoonacular.Value `json:"calories"`
	Carbs       spoonacular.Value `json:"carbs"`
	Fat         spoonacular.Value `json:"fat"`
	Protein     spoonacular.Value `json:"protein"`
}
