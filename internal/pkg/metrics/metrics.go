package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 生成輪次種類
const (
	KindList   = "list"
	KindDetail = "detail"
	KindChat   = "chat"
)

// 輪次結果
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusCached  = "cached"
)

// 收藏動作
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

var (
	roundsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receptomat_generation_rounds_total",
			Help: "Total number of generation rounds by kind and outcome.",
		},
		[]string{"kind", "status"},
	)
	roundDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "receptomat_generation_round_duration_seconds",
			Help:    "Histogram of generation round durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	chunksReceived = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "receptomat_stream_chunks",
			Help:    "Histogram of chunks received per stream.",
			Buckets: prometheus.ExponentialBuckets(4, 2, 10), // 4 .. 2048
		},
		[]string{"provider"},
	)
	recordsEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "receptomat_recipes_emitted_total",
			Help: "Total number of recipe summaries delivered while streaming.",
		},
	)

	// 對應前端分析事件
	recipeGeneration = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receptomat_recipe_generation_total",
			Help: "recipe_generation analytics events.",
		},
		[]string{"servings"},
	)
	generationIngredients = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "receptomat_recipe_generation_ingredients",
			Help:    "Number of ingredients supplied per recipe_generation event.",
			Buckets: prometheus.LinearBuckets(1, 2, 10),
		},
	)
	recipeView = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "receptomat_recipe_view_total",
			Help: "recipe_view analytics events.",
		},
	)
	recipeFavorite = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receptomat_recipe_favorite_total",
			Help: "recipe_favorite analytics events.",
		},
		[]string{"action"},
	)
)

// ObserveRound 記錄一次生成輪次
func ObserveRound(kind, status string, d time.Duration) {
	roundsTotal.WithLabelValues(kind, status).Inc()
	roundDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveChunks 記錄單次串流收到的片段數
func ObserveChunks(provider string, n int) {
	chunksReceived.WithLabelValues(provider).Observe(float64(n))
}

// RecipeEmitted 串流期間送出一筆食譜
func RecipeEmitted() {
	recordsEmitted.Inc()
}

// TrackRecipeGeneration 記錄 recipe_generation 事件
func TrackRecipeGeneration(ingredientsCount, servings int) {
	recipeGeneration.WithLabelValues(servingsLabel(servings)).Inc()
	generationIngredients.Observe(float64(ingredientsCount))
}

// TrackRecipeView 記錄 recipe_view 事件
func TrackRecipeView() {
	recipeView.Inc()
}

// TrackRecipeFavorite 記錄 recipe_favorite 事件
func TrackRecipeFavorite(action string) {
	recipeFavorite.WithLabelValues(action).Inc()
}

// servingsLabel 把份數壓成有限的標籤值
func servingsLabel(servings int) string {
	if servings >= 6 {
		return "6+"
	}
	return strconv.Itoa(servings)
}
