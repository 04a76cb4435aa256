package usecase

import "fmt"

var ErrPersistence = fmt.Errorf("presence use case persistence error")
