package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"receptomat/internal/api/handlers/health"
	"receptomat/internal/api/middleware"
	"receptomat/internal/core/chat"
	"receptomat/internal/core/favorites"
	"receptomat/internal/core/image"
	"receptomat/internal/core/ingredients"
	"receptomat/internal/core/recipe"
	"receptomat/internal/infrastructure/config"
	"receptomat/internal/mocks"
	"receptomat/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type sseEvent struct {
	Name string
	Data string
}

func parseSSE(t *testing.T, body string) []sseEvent {
	t.Helper()
	var (
		events []sseEvent
		cur    sseEvent
	)
	sc := bufio.NewScanner(strings.NewReader(body))
	sc.Buffer(make([]byte, 1<<20), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			cur.Name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			cur.Data += strings.TrimPrefix(line, "data:")
		case line == "" && cur.Name != "":
			events = append(events, cur)
			cur = sseEvent{}
		}
	}
	require.NoError(t, sc.Err())
	return events
}

func listText(titles ...string) string {
	var b strings.Builder
	for i, title := range titles {
		// 第 i 道缺少 i 樣食材
		missing := "ništa"
		if i > 0 {
			items := make([]string, i)
			for j := range items {
				items[j] = fmt.Sprintf("sastojak%d", j)
			}
			missing = strings.Join(items, ", ")
		}
		fmt.Fprintf(&b, "###%d\n%s\nOpis: Opis.\nNačin pripreme: Kuvanje\nVreme pripreme: 20 min\nTežina: lako\nPorcije: 2\nNedostaju: %s\n",
			i+1, title, missing)
	}
	return b.String()
}

type testServer struct {
	router    *Router
	provider  *mocks.MockStreamProvider
	favorites *favorites.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	common.InitTestLogger()

	cfg := &config.Config{
		App:    config.AppConfig{Version: "test"},
		Recipe: config.RecipeConfig{DefaultServings: 2, DefaultTargetCount: 3, MoreCount: 2},
	}
	p := mocks.NewMockStreamProvider(t)
	sessions := recipe.NewRegistry(recipe.Deps{
		AI:      p,
		Staples: recipe.NewStapleClassifier(nil),
		Images:  image.NewService(nil),
	}, 0)
	store := favorites.NewMemoryStore()
	catalog := ingredients.NewCatalog([]ingredients.Ingredient{
		{ID: "1", Name: "Garlic", Category: ingredients.CategoryVegetables, AvailableInSerbia: true},
		{ID: "2", Name: "Egg", Category: ingredients.CategoryMeat, AvailableInSerbia: true},
		{ID: "3", Name: "Mirin", Category: ingredients.CategoryPantry, AvailableInSerbia: false},
	}, ingredients.NewTranslator([][2]string{{"Garlic", "Beli luk"}, {"Egg", "Jaje"}}))

	r := SetupRouter(cfg, Services{
		Sessions:     sessions,
		Favorites:    store,
		Ingredients:  catalog,
		Chat:         chat.NewAssistant(p),
		ProviderName: "mock",
	})
	t.Cleanup(func() {
		r.Close()
		sessions.Close()
	})
	return &testServer{router: r, provider: p, favorites: store}
}

func (s *testServer) do(method, path, session, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(middleware.SessionHeader, session)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) streams(chunks ...string) {
	s.provider.On("GenerateStream", mock.Anything, mock.Anything, mock.Anything).
		Return(mocks.StreamChunks(nil, chunks...)).Once()
}

func TestIngredientsStreamsRecipes(t *testing.T) {
	s := newTestServer(t)
	text := listText("Omlet", "Palačinke", "Gulaš", "Sarma")
	s.streams(text[:60], text[60:200], text[200:])

	w := s.do(http.MethodPost, "/api/v1/recipes/ingredients", "s1", `{"ingredients":["jaja","mleko"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", w.Header().Get(middleware.SessionHeader))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")

	events := parseSSE(t, w.Body.String())
	require.NotEmpty(t, events)

	var recipes []recipe.Summary
	for _, e := range events[:len(events)-1] {
		require.Equal(t, "recipe", e.Name)
		var r recipe.Summary
		require.NoError(t, json.Unmarshal([]byte(e.Data), &r))
		recipes = append(recipes, r)
	}
	// 預設目標數量為 3
	require.Len(t, recipes, 3)
	assert.Equal(t, "Omlet", recipes[0].Title)

	done := events[len(events)-1]
	require.Equal(t, "done", done.Name)
	var payload struct {
		Recipes []recipe.Summary `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal([]byte(done.Data), &payload))
	require.Len(t, payload.Recipes, 3)
	assert.Equal(t, []string{}, payload.Recipes[0].MissingIngredients)

	w = s.do(http.MethodGet, "/api/v1/recipes/context", "s1", "")
	assert.JSONEq(t, `{"titles":["Omlet","Palačinke","Gulaš"]}`, w.Body.String())
}

func TestMoreKeepsContextAndResetClears(t *testing.T) {
	s := newTestServer(t)
	s.streams(listText("Omlet"))
	s.streams(listText("Pita", "Burek", "Proja"))

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/v1/recipes/ingredients", "s2", `{"ingredients":["jaja"],"count":1}`).Code)
	w := s.do(http.MethodPost, "/api/v1/recipes/more", "s2", `{"ingredients":["jaja"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	// more 使用設定中的數量 (2)
	var recipeEvents int
	for _, e := range parseSSE(t, w.Body.String()) {
		if e.Name == "recipe" {
			recipeEvents++
		}
	}
	assert.Equal(t, 2, recipeEvents)

	w = s.do(http.MethodGet, "/api/v1/recipes/context", "s2", "")
	assert.JSONEq(t, `{"titles":["Omlet","Pita","Burek"]}`, w.Body.String())

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/recipes/context", "s2", "").Code)
	w = s.do(http.MethodGet, "/api/v1/recipes/context", "s2", "")
	assert.JSONEq(t, `{"titles":[]}`, w.Body.String())
}

func TestListValidationErrorIsJSON(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/recipes/ingredients", "", `{"ingredients":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeInvalidRequest)

	w = s.do(http.MethodPost, "/api/v1/recipes/idea", "", `{"idea":"nešto","focus":"spicy"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	s.provider.AssertNotCalled(t, "GenerateStream", mock.Anything, mock.Anything, mock.Anything)
}

func TestStreamFailureBeforeFirstRecord(t *testing.T) {
	s := newTestServer(t)
	s.provider.On("GenerateStream", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("upstream down")).Once()

	w := s.do(http.MethodPost, "/api/v1/recipes/idea", "", `{"idea":"nešto brzo"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeGenerationFailed)
	assert.Contains(t, w.Body.String(), common.ErrGenerationFailed.Message)
}

func TestStreamFailureAfterRecordSendsErrorEvent(t *testing.T) {
	s := newTestServer(t)
	s.provider.On("GenerateStream", mock.Anything, mock.Anything, mock.Anything).
		Return(mocks.StreamChunks(context.DeadlineExceeded, listText("Omlet", "Pita")[:150]+"###3\n")).Once()

	w := s.do(http.MethodPost, "/api/v1/recipes/ingredients", "", `{"ingredients":["jaja"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	events := parseSSE(t, w.Body.String())
	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, "recipe", events[0].Name)
	last := events[len(events)-1]
	assert.Equal(t, "error", last.Name)
	assert.Contains(t, last.Data, common.ErrCodeGenerationFailed)
}

func TestDetailStreamsChunks(t *testing.T) {
	s := newTestServer(t)
	s.streams("Pasta\nSastojci:\n- Testenina\n", "Priprema:\n1. Prokuvati\n", "Vreme pripreme: 20 min\nReceptomat savet: Posolite vodu.")

	w := s.do(http.MethodPost, "/api/v1/recipes/detail", "", `{"recipe_name":"Pasta","ingredients":["testenina"],"servings":2}`)
	require.Equal(t, http.StatusOK, w.Code)

	events := parseSSE(t, w.Body.String())
	require.Len(t, events, 4)
	for _, e := range events[:3] {
		assert.Equal(t, "chunk", e.Name)
	}

	var first struct {
		Text   string        `json:"text"`
		Detail recipe.Detail `json:"detail"`
	}
	require.NoError(t, json.Unmarshal([]byte(events[0].Data), &first))
	assert.Equal(t, "Pasta", first.Detail.Title)
	assert.Equal(t, recipe.DetailTimeLoading, first.Detail.Time)

	var done recipe.Detail
	require.Equal(t, "done", events[3].Name)
	require.NoError(t, json.Unmarshal([]byte(events[3].Data), &done))
	assert.Equal(t, []string{"Testenina"}, done.Ingredients)
	assert.Equal(t, []string{"Prokuvati"}, done.Steps)
	assert.Equal(t, "20 min", done.Time)
	assert.Equal(t, "Posolite vodu.", done.Tip)
}

func TestDetailRequiresName(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/v1/recipes/detail", "", `{"ingredients":["x"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFavoritesRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/favorites", "fav", `{"title":"Gulaš","time":"90 min"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var saved recipe.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.True(t, saved.IsFavorite)
	assert.True(t, strings.HasPrefix(saved.ID, "gula-"), saved.ID)

	w = s.do(http.MethodGet, "/api/v1/favorites", "fav", "")
	assert.Contains(t, w.Body.String(), saved.ID)

	w = s.do(http.MethodGet, "/api/v1/favorites/"+saved.ID, "fav", "")
	assert.JSONEq(t, fmt.Sprintf(`{"id":%q,"is_favorite":true}`, saved.ID), w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/favorites/toggle", "fav", fmt.Sprintf(`{"id":%q,"title":"Gulaš"}`, saved.ID))
	assert.JSONEq(t, fmt.Sprintf(`{"id":%q,"added":false}`, saved.ID), w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/favorites/toggle", "fav", `{"id":"sarma-1","title":"Sarma"}`)
	assert.JSONEq(t, `{"id":"sarma-1","added":true}`, w.Body.String())

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/v1/favorites/sarma-1", "fav", "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/v1/favorites/sarma-1", "fav", "").Code)

	w = s.do(http.MethodGet, "/api/v1/favorites", "fav", "")
	assert.JSONEq(t, `{"favorites":[]}`, w.Body.String())
}

func TestFavoritesAreScopedBySession(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/favorites", "alice", `{"id":"gulas-1","title":"Gulaš"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, "/api/v1/favorites", "bob", "")
	assert.JSONEq(t, `{"favorites":[]}`, w.Body.String())
	w = s.do(http.MethodGet, "/api/v1/favorites/gulas-1", "bob", "")
	assert.JSONEq(t, `{"id":"gulas-1","is_favorite":false}`, w.Body.String())
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/v1/favorites/gulas-1", "bob", "").Code)

	w = s.do(http.MethodGet, "/api/v1/favorites", "alice", "")
	assert.Contains(t, w.Body.String(), "gulas-1")
}

func TestIngredientsRoutes(t *testing.T) {
	s := newTestServer(t)

	var list struct {
		Ingredients []ingredients.Ingredient `json:"ingredients"`
		Count       int                      `json:"count"`
	}
	w := s.do(http.MethodGet, "/api/v1/ingredients", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Count)

	w = s.do(http.MethodGet, "/api/v1/ingredients?q=luk", "", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Ingredients, 1)
	assert.Equal(t, "Beli luk", list.Ingredients[0].SerbianName)

	w = s.do(http.MethodGet, "/api/v1/ingredients?category=meat&q=jaje", "", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Ingredients, 1)
	assert.Equal(t, "Egg", list.Ingredients[0].Name)

	w = s.do(http.MethodGet, "/api/v1/ingredients?q=mirin", "", "")
	assert.JSONEq(t, `{"ingredients":[],"count":0}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/ingredients/categories", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ostalo iz špajza")

	w = s.do(http.MethodGet, "/api/v1/ingredients/grouped", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var grouped struct {
		Groups []ingredients.Group `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grouped))
	require.NotEmpty(t, grouped.Groups)
	assert.Equal(t, ingredients.CategoryMeat, grouped.Groups[0].ID)
}

func TestChatStreamsAnswer(t *testing.T) {
	s := newTestServer(t)
	s.streams("Umesto mleka ", "koristi vodu i malo ulja!")

	w := s.do(http.MethodPost, "/api/v1/chat", "", `{"question":"Palačinke bez mleka?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	events := parseSSE(t, w.Body.String())
	require.Len(t, events, 3)
	assert.Equal(t, "chunk", events[0].Name)
	assert.JSONEq(t, `{"text":"Umesto mleka "}`, events[0].Data)
	assert.Equal(t, "done", events[2].Name)
	assert.JSONEq(t, `{"answer":"Umesto mleka koristi vodu i malo ulja!"}`, events[2].Data)

	w = s.do(http.MethodGet, "/api/v1/chat", "", "")
	assert.Contains(t, w.Body.String(), "Receptomat")
}

func TestChatErrors(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/chat", "", `{"question":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.provider.On("GenerateStream", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("upstream down")).Once()
	w = s.do(http.MethodPost, "/api/v1/chat", "", `{"question":"Kako da ispečem hleb?"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeChatFailed)
}

func TestHealthRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "mock", resp["provider"])

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/ready", "", "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/live", "", "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/metrics", "", "").Code)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func TestReadyReportsFailedDependency(t *testing.T) {
	gin.SetMode(gin.TestMode)
	common.InitTestLogger()
	sessions := recipe.NewRegistry(recipe.Deps{AI: mocks.NewMockStreamProvider(t)}, 0)
	defer sessions.Close()

	r := SetupRouter(&config.Config{}, Services{
		Sessions:     sessions,
		Dependencies: map[string]health.Pinger{"redis": failingPinger{}},
	})
	defer r.Close()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis")
}
