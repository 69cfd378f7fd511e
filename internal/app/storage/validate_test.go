package storage

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mchat/internal/pkg/errs"
)

func TestValidateAvatarSize(t *testing.T) {
	req := require.New(t)

	req.Nil(ValidateAvatarSize(1024))
	req.Nil(ValidateAvatarSize(MaxAvatarSize))

	req.Equal(errs.ErrInvalidParams, ValidateAvatarSize(0).Code)
	req.Equal(errs.ErrInvalidParams, ValidateAvatarSize(-1).Code)
	req.Equal(errs.ErrFileSizeTooLarge, ValidateAvatarSize(MaxAvatarSize+1).Code)
}

func TestValidateAvatarType(t *testing.T) {
	req := require.New(t)

	req.Nil(ValidateAvatarType("me.png", "image/png"))
	req.Nil(ValidateAvatarType("me.JPG", "IMAGE/JPEG"))

	// Extension and MIME type must agree.
	req.Equal(errs.ErrFileTypeInvalid, ValidateAvatarType("me.png", "image/jpeg").Code)

	// Disallowed types and missing extensions are rejected.
	req.Equal(errs.ErrFileTypeInvalid, ValidateAvatarType("me.svg", "image/svg+xml").Code)
	req.Equal(errs.ErrFileTypeInvalid, ValidateAvatarType("me", "image/png").Code)
}
