package main

import (
	"context"
	"errors"
)

// Book represents a book record. The identifier is supplied by the
// caller at creation time and is the only addressing key. All other
// fields are independently nullable.
type Book struct {
	ID     string  `json:"id"`
	Name   *string `json:"name"`
	Author *string `json:"author"`
	Year   *int    `json:"year"`
}

// Sentinel outcomes of the storage layer. Callers rely on them to tell
// an absent record or a duplicate identifier apart from a real failure.
var (
	ErrBookNotFound  = errors.New("book not found")
	ErrDuplicateBook = errors.New("book already exists")
)

// BookStorage defines possible operations on book entity.
type BookStorage interface {
	Add(ctx context.Context, book Book) (Book, error)
	GetOne(ctx context.Context, id string) (Book, error)
	Delete(ctx context.Context, id string) error
	Update(ctx context.Context, id string, book Book) (Book, error)
	GetAll(ctx context.Context) ([]Book, error)
}
