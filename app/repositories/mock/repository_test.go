package mock

import (
	"testing"

	"askblog/app/repositories/repotest"
)

func TestMockRepositories(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repotest.Repos {
		posts, comments := NewRepositories()
		return repotest.Repos{
			Posts:    posts,
			Comments: comments,
			Users:    NewUserRepository(),
		}
	})
}
