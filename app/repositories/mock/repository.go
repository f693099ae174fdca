// Package mock provides in-memory repositories for service and controller tests.
package mock

import (
	"context"
	"math"
	"sort"
	"sync"

	"askblog/app/models"
	"askblog/app/repositories"
)

// PostRepository keeps posts in a map. Values are copied in and out so
// callers cannot mutate stored state, matching the real stores.
type PostRepository struct {
	posts  map[int]models.Post
	nextID int
	mutex  sync.RWMutex

	// Err, when set, is returned by every method.
	Err error

	comments *CommentRepository
}

// CommentRepository keeps comments in a map. One built by NewRepositories
// checks its post store on Create.
type CommentRepository struct {
	comments map[int]models.Comment
	nextID   int
	mutex    sync.RWMutex

	Err error

	posts *PostRepository
}

type UserRepository struct {
	users  map[int]models.User
	nextID int
	mutex  sync.RWMutex

	Err error
}

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts:  make(map[int]models.Post),
		nextID: 1,
	}
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{
		comments: make(map[int]models.Comment),
		nextID:   1,
	}
}

// NewRepositories returns post and comment stores that keep the relation
// between them: comments need an existing post and go away with it.
func NewRepositories() (*PostRepository, *CommentRepository) {
	posts, comments := NewPostRepository(), NewCommentRepository()
	posts.comments = comments
	comments.posts = posts
	return posts, comments
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:  make(map[int]models.User),
		nextID: 1,
	}
}

var (
	_ repositories.PostRepository    = (*PostRepository)(nil)
	_ repositories.CommentRepository = (*CommentRepository)(nil)
	_ repositories.UserRepository    = (*UserRepository)(nil)
)

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.posts = make(map[int]models.Post)
	m.nextID = 1
}

// PostRepository implementation
func (m *PostRepository) Create(_ context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	post.ID = m.nextID
	m.nextID++
	stored := *post
	stored.Comments = nil
	m.posts[post.ID] = stored
	return nil
}

func (m *PostRepository) GetByID(_ context.Context, id int) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &post, nil
}

func (m *PostRepository) Update(_ context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, exists := m.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	stored := *post
	stored.Comments = nil
	m.posts[post.ID] = stored
	return nil
}

func (m *PostRepository) Delete(_ context.Context, id int) error {
	if err := m.remove(id); err != nil {
		return err
	}
	// Post first: a racing comment Create then fails or is swept here.
	if m.comments != nil {
		m.comments.removePost(id)
	}
	return nil
}

func (m *PostRepository) remove(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

func (m *PostRepository) exists(id int) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	_, ok := m.posts[id]
	return ok
}

func (m *PostRepository) List(_ context.Context, limit, offset int) ([]*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	posts := []*models.Post{}
	count := 0
	for id := m.nextID - 1; id >= 1; id-- {
		if post, exists := m.posts[id]; exists {
			if count >= offset && len(posts) < limit {
				posts = append(posts, &post)
			}
			count++
		}
	}
	return posts, nil
}

func (m *PostRepository) All(ctx context.Context) ([]*models.Post, error) {
	return m.List(ctx, math.MaxInt, 0)
}

func (m *PostRepository) Count(_ context.Context) (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.posts), nil
}

// CommentRepository implementation
func (m *CommentRepository) Create(_ context.Context, comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.posts != nil && !m.posts.exists(comment.PostID) {
		return repositories.ErrNotFound
	}

	comment.ID = m.nextID
	m.nextID++
	stored := *comment
	stored.Post = nil
	m.comments[comment.ID] = stored
	return nil
}

func (m *CommentRepository) GetByID(_ context.Context, id int) (*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	comment, exists := m.comments[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &comment, nil
}

func (m *CommentRepository) Update(_ context.Context, comment *models.Comment) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	existing, exists := m.comments[comment.ID]
	if !exists || existing.PostID != comment.PostID {
		return repositories.ErrNotFound
	}
	stored := *comment
	stored.Post = nil
	m.comments[comment.ID] = stored
	return nil
}

func (m *CommentRepository) Delete(_ context.Context, id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, exists := m.comments[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *CommentRepository) removePost(postID int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for id, comment := range m.comments {
		if comment.PostID == postID {
			delete(m.comments, id)
		}
	}
}

func (m *CommentRepository) ListByPost(ctx context.Context, postID int) ([]*models.Comment, error) {
	return m.filter(func(c models.Comment) bool { return c.PostID == postID })
}

func (m *CommentRepository) All(_ context.Context) ([]*models.Comment, error) {
	return m.filter(func(models.Comment) bool { return true })
}

func (m *CommentRepository) filter(keep func(models.Comment) bool) ([]*models.Comment, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	comments := []*models.Comment{}
	for _, comment := range m.comments {
		if keep(comment) {
			c := comment
			comments = append(comments, &c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].ID < comments[j].ID
	})
	return comments, nil
}

// UserRepository implementation
func (m *UserRepository) Create(_ context.Context, user *models.User) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	for _, existing := range m.users {
		if existing.NormalizedUsername() == user.NormalizedUsername() {
			return repositories.ErrDuplicate
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = *user
	return nil
}

func (m *UserRepository) GetByID(_ context.Context, id int) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	user, exists := m.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &user, nil
}

func (m *UserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	key := models.NormalizeUsername(username)
	for _, user := range m.users {
		if user.NormalizedUsername() == key {
			u := user
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *UserRepository) List(_ context.Context) ([]*models.User, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	users := []*models.User{}
	for _, user := range m.users {
		u := user
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func (m *UserRepository) Count(_ context.Context) (int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.users), nil
}
