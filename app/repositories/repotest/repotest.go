// Package repotest holds behaviour checks shared by every repository
// implementation.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"askblog/app/models"
	"askblog/app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Repos is one storage backend's set of repositories.
type Repos struct {
	Posts    repositories.PostRepository
	Comments repositories.CommentRepository
	Users    repositories.UserRepository
}

// Factory returns empty repositories for a single subtest.
type Factory func(t *testing.T) Repos

// Run exercises the full repository contract against repos built by newRepos.
func Run(t *testing.T, newRepos Factory) {
	t.Run("posts", func(t *testing.T) { testPosts(t, newRepos) })
	t.Run("comments", func(t *testing.T) { testComments(t, newRepos) })
	t.Run("users", func(t *testing.T) { testUsers(t, newRepos) })
	t.Run("concurrent creates", func(t *testing.T) { testConcurrentCreates(t, newRepos) })
}

func newPost(title string) *models.Post {
	p := &models.Post{Title: title, Content: "content of " + title}
	p.BeforeCreate()
	return p
}

func newComment(postID int, content string) *models.Comment {
	c := &models.Comment{PostID: postID, Author: "Tester", Content: content}
	c.BeforeCreate()
	return c
}

func testPosts(t *testing.T, newRepos Factory) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		r := newRepos(t)
		post := newPost("First")
		require.NoError(t, r.Posts.Create(ctx, post))
		assert.Equal(t, 1, post.ID)

		got, err := r.Posts.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, post.Title, got.Title)
		assert.Equal(t, post.Content, got.Content)
		assert.True(t, post.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("get missing", func(t *testing.T) {
		r := newRepos(t)
		_, err := r.Posts.GetByID(ctx, 42)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("list newest first with window", func(t *testing.T) {
		r := newRepos(t)
		for i := 1; i <= 12; i++ {
			require.NoError(t, r.Posts.Create(ctx, newPost(fmt.Sprintf("Post %d", i))))
		}

		page, err := r.Posts.List(ctx, 5, 0)
		require.NoError(t, err)
		require.Len(t, page, 5)
		assert.Equal(t, 12, page[0].ID)
		assert.Equal(t, 8, page[4].ID)

		page, err = r.Posts.List(ctx, 5, 10)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, 2, page[0].ID)
		assert.Equal(t, 1, page[1].ID)

		page, err = r.Posts.List(ctx, 5, 20)
		require.NoError(t, err)
		assert.Empty(t, page)

		n, err := r.Posts.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 12, n)

		all, err := r.Posts.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 12)
		assert.Equal(t, 12, all[0].ID)
	})

	t.Run("update", func(t *testing.T) {
		r := newRepos(t)
		post := newPost("Original")
		require.NoError(t, r.Posts.Create(ctx, post))

		post.Title = "Changed"
		post.UpdatedAt = post.UpdatedAt.Add(time.Minute)
		require.NoError(t, r.Posts.Update(ctx, post))

		got, err := r.Posts.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "Changed", got.Title)
		assert.True(t, post.UpdatedAt.Equal(got.UpdatedAt))

		missing := newPost("Ghost")
		missing.ID = 99
		assert.ErrorIs(t, r.Posts.Update(ctx, missing), repositories.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		r := newRepos(t)
		post := newPost("Doomed")
		require.NoError(t, r.Posts.Create(ctx, post))

		require.NoError(t, r.Posts.Delete(ctx, post.ID))
		_, err := r.Posts.GetByID(ctx, post.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		assert.ErrorIs(t, r.Posts.Delete(ctx, post.ID), repositories.ErrNotFound)
	})

	t.Run("delete takes comments along", func(t *testing.T) {
		r := newRepos(t)
		keep, drop := newPost("Keep"), newPost("Drop")
		require.NoError(t, r.Posts.Create(ctx, keep))
		require.NoError(t, r.Posts.Create(ctx, drop))

		survivor := newComment(keep.ID, "survivor")
		require.NoError(t, r.Comments.Create(ctx, survivor))
		var gone []*models.Comment
		for i := 0; i < 3; i++ {
			c := newComment(drop.ID, "gone")
			require.NoError(t, r.Comments.Create(ctx, c))
			gone = append(gone, c)
		}

		require.NoError(t, r.Posts.Delete(ctx, drop.ID))

		dropped, err := r.Comments.ListByPost(ctx, drop.ID)
		require.NoError(t, err)
		assert.Empty(t, dropped)
		for _, c := range gone {
			_, err := r.Comments.GetByID(ctx, c.ID)
			assert.ErrorIs(t, err, repositories.ErrNotFound)
		}

		all, err := r.Comments.All(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, survivor.ID, all[0].ID)
	})
}

func testComments(t *testing.T, newRepos Factory) {
	ctx := context.Background()

	t.Run("create, get and list by post", func(t *testing.T) {
		r := newRepos(t)
		first, second := newPost("First"), newPost("Second")
		require.NoError(t, r.Posts.Create(ctx, first))
		require.NoError(t, r.Posts.Create(ctx, second))

		for i := 0; i < 3; i++ {
			require.NoError(t, r.Comments.Create(ctx, newComment(first.ID, fmt.Sprintf("c%d", i))))
		}
		other := newComment(second.ID, "elsewhere")
		require.NoError(t, r.Comments.Create(ctx, other))

		got, err := r.Comments.GetByID(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.PostID)
		assert.Equal(t, "elsewhere", got.Content)

		list, err := r.Comments.ListByPost(ctx, first.ID)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "c0", list[0].Content)
		assert.Equal(t, "c2", list[2].Content)

		all, err := r.Comments.All(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 4)

		empty, err := r.Comments.ListByPost(ctx, 999)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("get missing", func(t *testing.T) {
		r := newRepos(t)
		_, err := r.Comments.GetByID(ctx, 5)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("update keeps post", func(t *testing.T) {
		r := newRepos(t)
		post := newPost("Post")
		require.NoError(t, r.Posts.Create(ctx, post))
		comment := newComment(post.ID, "before")
		require.NoError(t, r.Comments.Create(ctx, comment))

		comment.Content = "after"
		require.NoError(t, r.Comments.Update(ctx, comment))
		got, err := r.Comments.GetByID(ctx, comment.ID)
		require.NoError(t, err)
		assert.Equal(t, "after", got.Content)

		moved := *comment
		moved.PostID = post.ID + 1
		assert.ErrorIs(t, r.Comments.Update(ctx, &moved), repositories.ErrNotFound)

		ghost := newComment(post.ID, "ghost")
		ghost.ID = 77
		assert.ErrorIs(t, r.Comments.Update(ctx, ghost), repositories.ErrNotFound)
	})

	t.Run("create on missing post", func(t *testing.T) {
		r := newRepos(t)
		orphan := newComment(404, "nobody home")
		assert.ErrorIs(t, r.Comments.Create(ctx, orphan), repositories.ErrNotFound)

		all, err := r.Comments.All(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		post := newPost("Short lived")
		require.NoError(t, r.Posts.Create(ctx, post))
		require.NoError(t, r.Posts.Delete(ctx, post.ID))
		assert.ErrorIs(t, r.Comments.Create(ctx, newComment(post.ID, "late")), repositories.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		r := newRepos(t)
		post := newPost("Post")
		require.NoError(t, r.Posts.Create(ctx, post))

		single := newComment(post.ID, "single")
		require.NoError(t, r.Comments.Create(ctx, single))
		require.NoError(t, r.Comments.Create(ctx, newComment(post.ID, "survivor")))

		require.NoError(t, r.Comments.Delete(ctx, single.ID))
		_, err := r.Comments.GetByID(ctx, single.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		assert.ErrorIs(t, r.Comments.Delete(ctx, single.ID), repositories.ErrNotFound)

		kept, err := r.Comments.ListByPost(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, kept, 1)
		assert.Equal(t, "survivor", kept[0].Content)
	})
}

func testUsers(t *testing.T, newRepos Factory) {
	ctx := context.Background()

	newUser := func(name string) *models.User {
		u := &models.User{Username: name, PasswordHash: []byte("hash")}
		u.BeforeCreate()
		return u
	}

	t.Run("create and lookup", func(t *testing.T) {
		r := newRepos(t)
		alice := newUser("Alice")
		require.NoError(t, r.Users.Create(ctx, alice))
		assert.Equal(t, 1, alice.ID)

		byID, err := r.Users.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", byID.Username)
		assert.Equal(t, []byte("hash"), byID.PasswordHash)

		byName, err := r.Users.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, byName.ID)

		_, err = r.Users.GetByUsername(ctx, "bob")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		_, err = r.Users.GetByID(ctx, 99)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("duplicate username", func(t *testing.T) {
		r := newRepos(t)
		require.NoError(t, r.Users.Create(ctx, newUser("carol")))
		assert.ErrorIs(t, r.Users.Create(ctx, newUser("CAROL")), repositories.ErrDuplicate)

		n, err := r.Users.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("list", func(t *testing.T) {
		r := newRepos(t)
		require.NoError(t, r.Users.Create(ctx, newUser("one")))
		staff := newUser("two")
		staff.IsStaff = true
		require.NoError(t, r.Users.Create(ctx, staff))

		users, err := r.Users.List(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "one", users[0].Username)
		assert.True(t, users[1].IsStaff)
	})
}

// testConcurrentCreates runs creates from many goroutines at once, the way
// concurrent requests reach a store.
func testConcurrentCreates(t *testing.T, newRepos Factory) {
	ctx := context.Background()
	const workers = 50

	newUser := func(name string) *models.User {
		u := &models.User{Username: name, PasswordHash: []byte("hash")}
		u.BeforeCreate()
		return u
	}

	t.Run("distinct records", func(t *testing.T) {
		r := newRepos(t)
		thread := newPost("Thread")
		require.NoError(t, r.Posts.Create(ctx, thread))

		var wg sync.WaitGroup
		errs := make(chan error, 3*workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- r.Posts.Create(ctx, newPost(fmt.Sprintf("Post %d", i)))
				errs <- r.Users.Create(ctx, newUser(fmt.Sprintf("user%d", i)))
				errs <- r.Comments.Create(ctx, newComment(thread.ID, fmt.Sprintf("c%d", i)))
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}

		posts, err := r.Posts.All(ctx)
		require.NoError(t, err)
		assert.Len(t, posts, workers+1)
		assertDistinctIDs(t, len(posts), func(i int) int { return posts[i].ID })

		users, err := r.Users.List(ctx)
		require.NoError(t, err)
		assert.Len(t, users, workers)
		assertDistinctIDs(t, len(users), func(i int) int { return users[i].ID })

		comments, err := r.Comments.ListByPost(ctx, thread.ID)
		require.NoError(t, err)
		assert.Len(t, comments, workers)
		assertDistinctIDs(t, len(comments), func(i int) int { return comments[i].ID })
	})

	t.Run("same username", func(t *testing.T) {
		r := newRepos(t)

		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- r.Users.Create(ctx, newUser("dave"))
			}()
		}
		wg.Wait()
		close(errs)

		created := 0
		for err := range errs {
			if err == nil {
				created++
				continue
			}
			assert.ErrorIs(t, err, repositories.ErrDuplicate)
		}
		assert.Equal(t, 1, created)

		n, err := r.Users.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func assertDistinctIDs(t *testing.T, n int, id func(i int) int) {
	t.Helper()
	seen := make(map[int]bool, n)
	for i := 0; i < n; i++ {
		assert.False(t, seen[id(i)], "id %d stored twice", id(i))
		seen[id(i)] = true
	}
}
