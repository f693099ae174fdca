package services

import (
	"context"
	"sort"
	"time"

	"askblog/app/repositories"
)

const dayLayout = "2006-01-02"

// DayActivity counts what was written on one calendar day (UTC).
type DayActivity struct {
	Day      string `json:"day"`
	Posts    int    `json:"posts"`
	Comments int    `json:"comments"`
}

// ChartService aggregates activity for the chart page.
type ChartService struct {
	postRepo    repositories.PostRepository
	commentRepo repositories.CommentRepository
}

func NewChartService(postRepo repositories.PostRepository, commentRepo repositories.CommentRepository) *ChartService {
	return &ChartService{postRepo: postRepo, commentRepo: commentRepo}
}

// DailyActivity returns per-day post and comment counts, oldest day first.
// Days without activity are left out.
func (s *ChartService) DailyActivity(ctx context.Context) ([]DayActivity, error) {
	posts, err := s.postRepo.All(ctx)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.All(ctx)
	if err != nil {
		return nil, err
	}

	byDay := map[string]*DayActivity{}
	bucket := func(t time.Time) *DayActivity {
		day := t.UTC().Format(dayLayout)
		a, ok := byDay[day]
		if !ok {
			a = &DayActivity{Day: day}
			byDay[day] = a
		}
		return a
	}
	for _, p := range posts {
		bucket(p.CreatedAt).Posts++
	}
	for _, c := range comments {
		bucket(c.CreatedAt).Comments++
	}

	out := make([]DayActivity, 0, len(byDay))
	for _, a := range byDay {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}
