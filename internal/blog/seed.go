package blog

import (
	"context"
	"time"
)

var sampleArticles = []struct {
	title   string
	content string
	age     time.Duration
}{
	{
		title: "Welcome to my blog",
		content: "This is my first blog post!\n\n" +
			"Welcome to the FISH blog. I will share thoughts on life, notes from work and the occasional odd story here.\n\n" +
			"I hope this blog becomes a bridge between us. If you have ideas or suggestions, leave a comment.",
	},
	{
		title: "Why a plain-text blog",
		content: "This blog keeps to a plain-text style:\n\n" +
			"1. Simple - the content comes first\n" +
			"2. Easy to read - classic text layout\n" +
			"3. Fast - no decoration to load\n" +
			"4. Portable - works the same on every device\n\n" +
			"In a busy world, going back to simple reading can be the better experience.",
		age: 24 * time.Hour,
	},
}

// SeedIfEmpty installs the sample articles when there are none, so the
// article list is never empty on first run. It reports whether it seeded.
func (m *Model) SeedIfEmpty(ctx context.Context, now time.Time, newID func() string) (bool, error) {
	if len(m.articles) > 0 {
		return false, nil
	}

	next := make([]Article, 0, len(sampleArticles))
	for _, s := range sampleArticles {
		next = append(next, Article{
			ID:        newID(),
			Title:     s.title,
			Content:   s.content,
			CreatedAt: now.Add(-s.age),
		})
	}

	if err := m.save(ctx, KeyArticles, next); err != nil {
		return false, err
	}
	m.articles = next
	m.log.Info("seeded sample articles")
	return true, nil
}
