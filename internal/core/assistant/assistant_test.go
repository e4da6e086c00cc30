package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-assistant/internal/core/session"
	"food-assistant/internal/infrastructure/config"
)

type fakeRecipes struct {
	text  string
	title string
	id    int

	gotIngredients []string
	gotWish        string
	findCalls      int

	explainID    int
	explainTitle string
}

func (f *fakeRecipes) FindRecipe(ctx context.Context, ingredients []string, wish string) (string, string, int) {
	f.findCalls++
	f.gotIngredients = ingredients
	f.gotWish = wish
	return f.text, f.title, f.id
}

func (f *fakeRecipes) ExplainHealth(ctx context.Context, recipeID int, title string) string {
	f.explainID = recipeID
	f.explainTitle = title
	return "The recipe '" + title + "' has a health score of **82 out of 100**."
}

type fakeHealth struct {
	got string
}

func (f *fakeHealth) CheckHealthiness(ctx context.Context, ingredient string) string {
	f.got = ingredient
	return "✅ " + ingredient + " appears to be a healthy choice."
}

type failingStore struct {
	session.Store
}

func (failingStore) Set(ctx context.Context, senderID string, value *session.Context) error {
	return errors.New("disk full")
}

func (failingStore) Get(ctx context.Context, senderID string) (*session.Context, error) {
	return nil, errors.New("disk gone")
}

func newTestAssistant(t *testing.T, recipes *fakeRecipes, opts Options) (*Assistant, session.Store) {
	t.Helper()
	store := session.NewMemoryStore(config.SessionConfig{})
	t.Cleanup(func() { store.Close() })
	return New(recipes, &fakeHealth{}, store, opts), store
}

var configured = Options{SpoonacularConfigured: true, FDCConfigured: true}

func TestSearchRecipeStoresContext(t *testing.T) {
	recipes := &fakeRecipes{text: "🍲 Here's a recipe I found for you!\n\n**Pad Thai**\n\n--- Ingredients ---\n * noodles\n", title: "Pad Thai", id: 101}
	a, store := newTestAssistant(t, recipes, configured)

	reply := a.SearchRecipe(context.Background(), "alice", []string{"noodles, tofu ", " egg"}, "  thai ")

	assert.Equal(t, []string{"noodles", "tofu", "egg"}, recipes.gotIngredients)
	assert.Equal(t, "thai", recipes.gotWish)
	assert.Equal(t, "Pad Thai", reply.RecipeTitle)
	assert.Equal(t, 101, reply.RecipeID)
	assert.Equal(t, "I've found a recipe for Pad Thai. The full details are now on your screen.", reply.Speech)

	stored, err := store.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 101, stored.LastRecipeID)
	assert.Equal(t, "Pad Thai", stored.LastRecipeTitle)
}

func TestSearchRecipeEmptyInputsStillSearch(t *testing.T) {
	recipes := &fakeRecipes{text: "random", title: "Surprise", id: 9}
	a, _ := newTestAssistant(t, recipes, configured)

	reply := a.SearchRecipe(context.Background(), "alice", nil, "")
	assert.Equal(t, 1, recipes.findCalls)
	assert.Empty(t, recipes.gotIngredients)
	assert.Equal(t, 9, reply.RecipeID)
}

func TestSearchRecipeFailureKeepsPreviousContext(t *testing.T) {
	recipes := &fakeRecipes{text: "😢 No main course recipes found matching wish: 'x'."}
	a, store := newTestAssistant(t, recipes, configured)
	require.NoError(t, store.Set(context.Background(), "alice", &session.Context{LastRecipeTitle: "Old", LastRecipeID: 1}))

	reply := a.SearchRecipe(context.Background(), "alice", nil, "x")
	assert.Zero(t, reply.RecipeID)
	assert.Contains(t, reply.Text, "wish: 'x'")

	stored, err := store.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "Old", stored.LastRecipeTitle)
}

func TestSearchRecipeStoreFailureIsNotSurfaced(t *testing.T) {
	recipes := &fakeRecipes{text: "ok", title: "Soup", id: 4}
	a := New(recipes, &fakeHealth{}, failingStore{}, configured)

	reply := a.SearchRecipe(context.Background(), "alice", []string{"leek"}, "")
	assert.Equal(t, "ok", reply.Text)
	assert.Equal(t, 4, reply.RecipeID)
}

func TestPlaceholderKeysShortCircuit(t *testing.T) {
	recipes := &fakeRecipes{}
	health := &fakeHealth{}
	a := New(recipes, health, nil, Options{})

	assert.Equal(t, msgSpoonacularNotConfigured, a.SearchRecipe(context.Background(), "alice", []string{"rice"}, "").Text)
	assert.Zero(t, recipes.findCalls)

	assert.Equal(t, msgFDCNotConfigured, a.CheckHealthiness(context.Background(), "apple").Text)
	assert.Empty(t, health.got)

	override := &session.Context{LastRecipeTitle: "Soup", LastRecipeID: 4}
	assert.Equal(t, msgSpoonacularNotConfigured, a.ExplainRecommendation(context.Background(), "alice", override).Text)
	assert.Zero(t, recipes.explainID)
}

func TestCheckHealthiness(t *testing.T) {
	health := &fakeHealth{}
	a := New(&fakeRecipes{}, health, nil, configured)

	assert.Equal(t, msgAskFoodItem, a.CheckHealthiness(context.Background(), "   ").Text)

	reply := a.CheckHealthiness(context.Background(), " apple ")
	assert.Equal(t, "apple", health.got)
	assert.Equal(t, "apple appears to be a healthy choice.", reply.Speech)
}

func TestExplainRecommendation(t *testing.T) {
	recipes := &fakeRecipes{}
	a, store := newTestAssistant(t, recipes, configured)
	ctx := context.Background()

	assert.Equal(t, msgNoRecipeInContext, a.ExplainRecommendation(ctx, "alice", nil).Text)

	require.NoError(t, store.Set(ctx, "alice", &session.Context{LastRecipeTitle: "Pad Thai", LastRecipeID: 101}))
	reply := a.ExplainRecommendation(ctx, "alice", nil)
	assert.Equal(t, 101, recipes.explainID)
	assert.Equal(t, "Pad Thai", recipes.explainTitle)
	assert.Equal(t, 101, reply.RecipeID)

	reply = a.ExplainRecommendation(ctx, "alice", &session.Context{LastRecipeTitle: "Curry", LastRecipeID: 7})
	assert.Equal(t, 7, recipes.explainID)
	assert.Equal(t, "Curry", reply.RecipeTitle)

	stored, err := store.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 101, stored.LastRecipeID)

	require.NoError(t, a.Forget(ctx, "alice"))
	assert.Equal(t, msgNoRecipeInContext, a.ExplainRecommendation(ctx, "alice", nil).Text)
}

func TestExplainRecommendationWithIDOnly(t *testing.T) {
	recipes := &fakeRecipes{}
	a, store := newTestAssistant(t, recipes, configured)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "u1", &session.Context{LastRecipeTitle: "Stored Stew", LastRecipeID: 7}))

	reply := a.ExplainRecommendation(ctx, "u1", &session.Context{LastRecipeID: 42})
	assert.NotEqual(t, msgNoRecipeInContext, reply.Text)
	assert.Equal(t, 42, recipes.explainID)
	assert.Empty(t, recipes.explainTitle)
	assert.Equal(t, 42, reply.RecipeID)
	assert.Empty(t, reply.RecipeTitle)
}

func TestExplainRecommendationStoreErrorMeansNoContext(t *testing.T) {
	a := New(&fakeRecipes{}, &fakeHealth{}, failingStore{}, configured)
	assert.Equal(t, msgNoRecipeInContext, a.ExplainRecommendation(context.Background(), "alice", nil).Text)
}

func TestSpeechText(t *testing.T) {
	cases := []struct{ in, want string }{
		{"✅ Apple appears to be a healthy choice.\n\nIt's a whole food.", "Apple appears to be a healthy choice. It's a whole food."},
		{"See https://example.com/x for **more**.", "See for more."},
		{"🍲 Here's a recipe I found for you!\n\n**Tacos**\n\n**Serves:** 4\n\n--- Ingredients ---\n * corn\n", "I've found a recipe for Tacos. The full details are now on your screen."},
		{"--- Ingredients ---\nnothing", "I've found a recipe for a recipe. The full details are now on your screen."},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SpeechText(tc.in))
	}
}
