package format

import "github.com/pkg/errors"

var ErrInvalidDataType = errors.New("invalid data type tag")
var ErrInvalidBoolean = errors.New("invalid boolean, should be 0 for false or 1 for true")
var ErrInvalidUTF8 = errors.New("string payload is not valid utf-8")
var ErrIntegerOverflow = errors.New("length does not fit its wire width")
var ErrMapFraming = errors.New("map framing violated")
