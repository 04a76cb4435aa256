package usecase

import "fmt"

var ErrPersistence = fmt.Errorf("message use case persistence error")
