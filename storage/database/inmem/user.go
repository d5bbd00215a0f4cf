package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/biglotteryfund/funding/core"
	"github.com/biglotteryfund/funding/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.table))
	for _, u := range repo.db.table {
		users = append(users, *u)
	}
	return users
}

func (repo *userRepository) CheckUniqueness(_ context.Context, username, email string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]bool, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded[u.ID] = true
	}

	for _, usr := range repo.db.table {
		if excluded[usr.ID] {
			continue
		}
		if username != "" && usr.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[usr.ID] = &usr
	return usr, nil
}

// orderings by field name; users are sorted by username by default
var userOrderings = map[string]func(a, b user.User) bool{
	"name":      func(a, b user.User) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) },
	"username":  func(a, b user.User) bool { return a.Username < b.Username },
	"email":     func(a, b user.User) bool { return a.Email < b.Email },
	"createdAt": func(a, b user.User) bool { return a.CreatedAt.Before(b.CreatedAt) },
	"lastLogin": func(a, b user.User) bool { return a.LastLogin.Before(b.LastLogin) },
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter, orderings []core.DBOrdering) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var users []user.User
	for _, usr := range repo.query() {
		if filter.Match(usr) {
			users = append(users, usr)
		}
	}

	if len(orderings) == 0 {
		orderings = []core.DBOrdering{{Field: "username", Ascending: true}}
	}
	sort.SliceStable(users, func(i, j int) bool {
		for _, ord := range orderings {
			less, ok := userOrderings[ord.Field]
			if !ok {
				continue
			}
			a, b := users[i], users[j]
			if !ord.Ascending {
				a, b = b, a
			}
			if less(a, b) {
				return true
			}
			if less(b, a) {
				return false
			}
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.table[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) find(match func(usr *user.User) bool) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.table {
		if match(usr) {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsername(_ context.Context, username string) (user.User, error) {
	if username == "" {
		return user.User{}, user.ErrNotFound
	}
	return repo.find(func(usr *user.User) bool { return usr.Username == username })
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	if email == "" {
		return user.User{}, user.ErrNotFound
	}
	return repo.find(func(usr *user.User) bool { return usr.Email == email })
}

func (repo *userRepository) GetUserByUsernameOrEmail(_ context.Context, username string) (user.User, error) {
	if username == "" {
		return user.User{}, user.ErrNotFound
	}
	return repo.find(func(usr *user.User) bool { return usr.Username == username || usr.Email == username })
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.db.table[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
