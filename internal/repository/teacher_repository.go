package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/spec-kit/duty-attendance/internal/domain"
	"github.com/spec-kit/duty-attendance/internal/gateway"
)

// TeacherRepository reads and writes teacher records on the backend.
type TeacherRepository interface {
	List(ctx context.Context) ([]domain.Teacher, error)
	GetByID(ctx context.Context, id domain.ID) (*domain.Teacher, error)
	Create(ctx context.Context, account domain.TeacherAccount, profile domain.TeacherProfile) error
	Update(ctx context.Context, id domain.ID, profile domain.TeacherProfile) error
	Delete(ctx context.Context, id domain.ID) error
}

type teacherRepository struct {
	api *gateway.Gateway
}

// NewTeacherRepository instantiates the repository.
func NewTeacherRepository(api *gateway.Gateway) TeacherRepository {
	return &teacherRepository{api: api}
}

type createTeacherRequest struct {
	User    domain.TeacherAccount `json:"user"`
	Teacher domain.TeacherProfile `json:"teacher"`
}

func (r *teacherRepository) List(ctx context.Context) ([]domain.Teacher, error) {
	var teachers []domain.Teacher
	err := r.api.List(ctx, gateway.Request{Method: http.MethodGet, Path: "teachers/"}, &teachers, "", "teachers")
	if err != nil {
		return nil, err
	}
	return teachers, nil
}

func (r *teacherRepository) GetByID(ctx context.Context, id domain.ID) (*domain.Teacher, error) {
	var teacher domain.Teacher
	err := r.api.JSON(ctx, gateway.Request{Method: http.MethodGet, Path: teacherPath(id, "")}, &teacher, "")
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (r *teacherRepository) Create(ctx context.Context, account domain.TeacherAccount, profile domain.TeacherProfile) error {
	return r.api.JSON(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "teachers/create/",
		Body:   createTeacherRequest{User: account, Teacher: profile},
	}, nil, "")
}

func (r *teacherRepository) Update(ctx context.Context, id domain.ID, profile domain.TeacherProfile) error {
	return r.api.JSON(ctx, gateway.Request{
		Method: http.MethodPut,
		Path:   teacherPath(id, "update/"),
		Body:   profile,
	}, nil, "")
}

func (r *teacherRepository) Delete(ctx context.Context, id domain.ID) error {
	return r.api.JSON(ctx, gateway.Request{Method: http.MethodDelete, Path: teacherPath(id, "delete/")}, nil, "")
}

func teacherPath(id domain.ID, action string) string {
	return fmt.Sprintf("teachers/%s/%s", url.PathEscape(id.String()), action)
}
