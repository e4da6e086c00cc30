package recipe

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"food-assistant/internal/core/spoonacular"
	"food-assistant/internal/core/upstream"
	"food-assistant/internal/pkg/common"
)

const (
	veryHealthyScore       = 75.0
	reasonablyHealthyScore = 50.0
)

const scoreExplanation = "The Spoonacular health score is a nutrient-density rating from 0 to 100 that rewards fiber and vitamins while penalizing sodium, sugar, and saturated fats, meaning most recipes fall below 50 because they contain common levels of salt or fat that the strict algorithm considers less than perfectly nutritious."

// Facts 取得健康分數與每份營養資訊
func (s *Service) Facts(ctx context.Context, recipeID int, title string) (*HealthFacts, error) {
	if recipeID <= 0 {
		return nil, upstream.NewError(upstream.KindMissingID, spoonacular.ServiceName, "recipe information", title)
	}

	info, err := s.source.GetInformation(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("取得健康分數失敗: %w", err)
	}
	widget, err := s.source.GetNutritionWidget(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("取得營養資訊失敗: %w", err)
	}

	facts := &HealthFacts{
		RecipeID: recipeID,
		Title:    firstNonEmpty(title, info.Title),
		Calories: widget.Calories,
		Carbs:    widget.Carbs,
		Fat:      widget.Fat,
		Protein:  widget.Protein,
	}
	if info.HealthScore != nil {
		facts.HealthScore = *info.HealthScore
	}
	return facts, nil
}

// ExplainHealth 回傳食譜健康分數的說明，錯誤也轉為文字
func (s *Service) ExplainHealth(ctx context.Context, recipeID int, title string) string {
	facts, err := s.Facts(ctx, recipeID, title)
	if err != nil {
		common.LogWarn("食譜健康說明失敗",
			zap.Int("recipe_id", recipeID),
			zap.String("kind", string(upstream.KindOf(err))),
			zap.Error(err),
		)
		return ErrorMessage(err)
	}
	return facts.Render()
}

// Tier 依分數給出評語
func Tier(score float64) string {
	switch {
	case score >= veryHealthyScore:
		return "This is a very healthy choice! It's well-balanced and likely rich in nutrients."
	case score >= reasonablyHealthyScore:
		return "This is a reasonably healthy option. It provides a good balance of nutrients."
	default:
		return "This might not be the healthiest option, but it can be enjoyed in moderation as part of a balanced diet."
	}
}

// Render 產生健康說明文字
func (f *HealthFacts) Render() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "The recipe '%s' has a health score of **%s out of 100**.\n",
		f.Title, strconv.FormatFloat(f.HealthScore, 'f', -1, 64))
	sb.WriteString(Tier(f.HealthScore))

	sb.WriteString("\n\n--- Nutritional Facts (per serving) ---\n")
	fmt.Fprintf(&sb, " * **Calories:** %s\n", f.Calories)
	fmt.Fprintf(&sb, " * **Carbohydrates:** %s\n", f.Carbs)
	fmt.Fprintf(&sb, " * **Fat:** %s\n", f.Fat)
	fmt.Fprintf(&sb, " * **Protein:** %s\n", f.Protein)

	sb.WriteString("\n" + scoreExplanation + "\n")
	return sb.String()
}
