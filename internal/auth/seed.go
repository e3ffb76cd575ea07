package auth

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DemoAccount is a seeded login.
type DemoAccount struct {
	User     User
	Password string
}

// DemoAccounts are seeded into an empty directory. User 1 owns the demo orders.
func DemoAccounts() []DemoAccount {
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	return []DemoAccount{
		{User: User{ID: 1, Username: "user", Name: "Aziz Karimov", Email: "user@academy.uz", Phone: "+998901234567", Role: RoleUser, CreatedAt: created}, Password: "user123"},
		{User: User{ID: 2, Username: "admin", Name: "Administrator", Email: "admin@academy.uz", Phone: "+998901112233", Role: RoleAdmin, CreatedAt: created}, Password: "admin123"},
		{User: User{ID: 3, Username: "hr", Name: "Dilnoza Rahimova", Email: "hr@academy.uz", Role: RoleHR, CreatedAt: created}, Password: "hr123456"},
		{User: User{ID: 4, Username: "teacher", Name: "Jasur Toshmatov", Email: "teacher@academy.uz", Role: RoleTeacher, CreatedAt: created}, Password: "teacher123"},
	}
}

// SeedUsers returns a seed function hashing the demo passwords with cost.
// A hashing failure leaves that account without a usable password.
func SeedUsers(cost int) func() Users {
	return func() Users {
		accounts := DemoAccounts()
		users := make(Users, 0, len(accounts))
		for _, a := range accounts {
			if hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), cost); err == nil {
				a.User.PasswordHash = string(hash)
			}
			users = append(users, a.User)
		}
		return users
	}
}
