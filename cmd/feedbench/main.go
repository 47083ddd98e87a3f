package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/d60-Lab/placefeed/config"
	"github.com/d60-Lab/placefeed/internal/model"
	"github.com/d60-Lab/placefeed/internal/pagination"
	"github.com/d60-Lab/placefeed/internal/repository"
	"github.com/d60-Lab/placefeed/internal/service"
	"github.com/d60-Lab/placefeed/pkg/database"
	"github.com/d60-Lab/placefeed/pkg/logger"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

// 压测首页 feed 的游标分页：一个读者关注 AUTHORS 个作者，
// 每个作者 POSTS 帖，测首页和逐页翻到底的延迟分布。
func main() {
	cfg := must(config.Load())
	logger.Init(cfg.Log)
	db := must(database.InitDB(cfg))

	AUTHORS := envInt("AUTHORS", 100)
	POSTS := envInt("POSTS", 50)
	PAGE := envInt("PAGE", 50)
	ROUNDS := envInt("ROUNDS", 20)

	userRepo := repository.NewUserRepository(db)
	relationRepo := repository.NewRelationRepository(db)
	placeRepo := repository.NewPlaceRepository(db)
	postRepo := repository.NewPostRepository(db)
	feedSvc := service.NewFeedService(userRepo, relationRepo, postRepo, placeRepo)

	ctx := context.Background()

	// seed: reader + authors + posts
	reader := &model.User{Username: "reader0", Email: "reader0@example.com", PasswordHash: "x"}
	mustDo(userRepo.Create(ctx, reader))
	t0 := time.Now()
	for a := 0; a < AUTHORS; a++ {
		author := &model.User{
			Username:     fmt.Sprintf("author%d", a),
			Email:        fmt.Sprintf("author%d@example.com", a),
			PasswordHash: "x",
		}
		mustDo(userRepo.Create(ctx, author))
		must(relationRepo.Follow(ctx, reader.ID, author.ID))
		place := must(placeRepo.GetOrCreate(ctx, fmt.Sprintf("place-%d", a), float64(a%90), float64(a%180)))
		posts := make([]*model.Post, POSTS)
		for i := 0; i < POSTS; i++ {
			posts[i] = &model.Post{
				UrlsafeID: fmt.Sprintf("post-%d-%d", a, i),
				UserID:    author.ID,
				PlaceID:   place.ID,
				Content:   fmt.Sprintf("post %d from author %d", i, a),
			}
		}
		for _, p := range posts {
			mustDo(postRepo.Create(ctx, p))
		}
	}
	fmt.Printf("seeded %d authors x %d posts in %v\n", AUTHORS, POSTS, time.Since(t0))

	// first page latency
	firstPage := make([]time.Duration, 0, ROUNDS)
	for r := 0; r < ROUNDS; r++ {
		st := time.Now()
		page := must(feedSvc.HomeFeed(ctx, reader.ID, nil, PAGE))
		firstPage = append(firstPage, time.Since(st))
		if len(page.Items) == 0 {
			panic("empty first page")
		}
	}

	// full walk latency: follow cursors until the stream ends
	walkStart := time.Now()
	var cursor *pagination.Cursor
	pages, rows := 0, 0
	perPage := make([]time.Duration, 0, AUTHORS*POSTS/PAGE+1)
	for {
		st := time.Now()
		page := must(feedSvc.HomeFeed(ctx, reader.ID, cursor, PAGE))
		perPage = append(perPage, time.Since(st))
		pages++
		rows += len(page.Items)
		if page.Next == nil {
			break
		}
		cursor = page.Next
	}
	walkDur := time.Since(walkStart)

	fmt.Printf("AUTHORS=%d POSTS=%d PAGE=%d ROUNDS=%d\n", AUTHORS, POSTS, PAGE, ROUNDS)
	fmt.Printf("First page: p50=%v p95=%v p99=%v\n", pct(firstPage, 0.50), pct(firstPage, 0.95), pct(firstPage, 0.99))
	fmt.Printf("Full walk: pages=%d rows=%d total=%v per-page p95=%v\n", pages, rows, walkDur, pct(perPage, 0.95))
}
