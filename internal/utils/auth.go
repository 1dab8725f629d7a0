package utils

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/courseplanner-backend/internal/normalization"
	"github.com/yungbote/courseplanner-backend/internal/repos"
	"github.com/yungbote/courseplanner-backend/internal/types"
)

func ValidateRegistration(ctx context.Context, teacherRepo repos.TeacherRepo, teacher *types.Teacher) error {
	if teacher == nil {
		return fmt.Errorf("no teacher given, cannot proceed with registration")
	}
	if teacher.Email == "" {
		return fmt.Errorf("an email is required to register")
	}
	emailExists, err := teacherRepo.EmailExists(ctx, nil, teacher.Email)
	if err != nil {
		return fmt.Errorf("failed to check teacher email")
	}
	if emailExists {
		return fmt.Errorf("email is already in use")
	}
	if teacher.Password == "" {
		return fmt.Errorf("a password is required to register")
	}
	if teacher.FirstName == "" {
		return fmt.Errorf("a first name is required to register")
	}
	if teacher.LastName == "" {
		return fmt.Errorf("a last name is required to register")
	}
	return nil
}

func ValidateLogin(email, password string) error {
	if email == "" {
		return fmt.Errorf("email is required to login")
	}
	if password == "" {
		return fmt.Errorf("password is required to login")
	}
	return nil
}

func NormalizeTeacherFields(teacher *types.Teacher) {
	if teacher == nil {
		return
	}
	teacher.Email = normalization.ParseInputString(teacher.Email)
	teacher.FirstName = normalization.TrimInputString(teacher.FirstName)
	teacher.LastName = normalization.TrimInputString(teacher.LastName)
}

func HashPassword(teacher *types.Teacher) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(teacher.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	teacher.Password = string(hashed)
	return nil
}
