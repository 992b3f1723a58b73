package columns

import "errors"

var ErrUnknownType = errors.New("unknown column type")
