package game

import (
	"github.com/pkg/errors"
)

var (
	errUnexpectedMessageType = errors.New("unexpected message type")
)
