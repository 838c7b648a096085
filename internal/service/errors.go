package service

import (
	"errors"

	"github.com/ppec-inventory/internal/identifier"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrAlreadyFinished   = errors.New("component already finished")
	ErrAlreadyAllocated  = errors.New("batch already allocated")
	ErrInvalidLocation   = errors.New("invalid location")
	ErrInvalidFinish     = errors.New("invalid finish")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInconsistentBatch = errors.New("batch does not list component")

	// 标识符相关错误沿用 identifier 包的哨兵值，便于调用方统一 errors.Is
	ErrInvalidIdentifierFormat = identifier.ErrInvalidIdentifierFormat
	ErrCapacityExceeded        = identifier.ErrCapacityExceeded
)
