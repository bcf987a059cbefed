package gen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("underlying error")
		err := NewSchemaError("Book", "publishDate", "invalid type", cause)

		assert.Contains(t, err.Error(), "strata: schema error")
		assert.Contains(t, err.Error(), "type Book")
		assert.Contains(t, err.Error(), "field publishDate")
		assert.Contains(t, err.Error(), "invalid type")
		assert.Contains(t, err.Error(), "underlying error")
	})

	t.Run("Error message with type only", func(t *testing.T) {
		err := &SchemaError{Type: "Book"}
		assert.Contains(t, err.Error(), "type Book")
		assert.NotContains(t, err.Error(), "field")
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root cause")
		err := NewSchemaError("Book", "", "", cause)

		assert.Equal(t, cause, err.Unwrap())
		assert.True(t, errors.Is(err, cause))
		assert.True(t, errors.Is(err, ErrInvalidSchema))
	})
}

func TestConfigError(t *testing.T) {
	t.Run("with value", func(t *testing.T) {
		err := NewConfigError("types.varchar", "MoneyType", "unknown type handler")
		assert.Equal(t, `strata: config error for "types.varchar" (value: MoneyType): unknown type handler`, err.Error())
		assert.True(t, errors.Is(err, ErrMissingConfig))
	})

	t.Run("without value", func(t *testing.T) {
		err := NewConfigError("Target", nil, "target directory cannot be empty")
		assert.Equal(t, `strata: config error for "Target": target directory cannot be empty`, err.Error())
	})
}

func TestEdgeError(t *testing.T) {
	err := NewEdgeError("Book", "Author", "author", "target type does not exist", nil)
	assert.Contains(t, err.Error(), "on edge author")
	assert.Contains(t, err.Error(), "(Book -> Author)")
	assert.True(t, errors.Is(err, ErrInvalidEdge))

	err = &EdgeError{From: "Book", Edge: "author"}
	assert.Contains(t, err.Error(), "from Book")
}

func TestGenerationError(t *testing.T) {
	cause := &InvalidEnumDefaultError{Field: "orders.status", Value: "lost", ValueSet: []string{"pending", "done"}}
	err := NewGenerationError("object", "acme/shop/order.go", "", cause)

	assert.Contains(t, err.Error(), "in phase object")
	assert.Contains(t, err.Error(), "(file: acme/shop/order.go)")
	assert.True(t, errors.Is(err, ErrGenerationFailed))
	assert.True(t, errors.Is(err, ErrInvalidEnumDefault))

	var enumErr *InvalidEnumDefaultError
	require.True(t, errors.As(err, &enumErr))
	assert.Equal(t, "lost", enumErr.Value)
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("Book", "price", -1, "must be positive")
	assert.Contains(t, err.Error(), "on type Book")
	assert.Contains(t, err.Error(), "field price")
	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.True(t, errors.Is(err, ErrInvalidSchema))
	assert.False(t, IsSchemaError(err))
}

func TestResolutionErrors(t *testing.T) {
	t.Run("InvalidTemporalDefaultError", func(t *testing.T) {
		cause := errors.New("bad month")
		err := &InvalidTemporalDefaultError{Field: "book.publish_date", Value: "2020-13-45", Cause: cause}
		assert.Equal(t, `strata: unable to parse default temporal value "2020-13-45" for column "book.publish_date": bad month`, err.Error())
		assert.True(t, errors.Is(err, ErrInvalidTemporalDefault))
		assert.True(t, errors.Is(err, cause))
		assert.True(t, IsResolutionError(err))
	})

	t.Run("InvalidEnumDefaultError", func(t *testing.T) {
		err := &InvalidEnumDefaultError{Field: "orders.status", Value: "lost", ValueSet: []string{"pending", "shipped"}}
		assert.Equal(t, `strata: default value "lost" of column "orders.status" is not among the enumerated values [pending, shipped]`, err.Error())
		assert.True(t, errors.Is(err, ErrInvalidEnumDefault))
		assert.False(t, errors.Is(err, ErrInvalidTemporalDefault))
	})

	t.Run("UnsupportedDefaultTypeError", func(t *testing.T) {
		err := &UnsupportedDefaultTypeError{Field: "book.cover", Type: "blob"}
		assert.Equal(t, `strata: cannot get default value string for "book.cover" (type blob)`, err.Error())
		assert.Equal(t, `strata: cannot get default value string for "book.cover"`, (&UnsupportedDefaultTypeError{Field: "book.cover"}).Error())
		assert.True(t, errors.Is(fmt.Errorf("wrapped: %w", err), ErrUnsupportedDefaultType))
	})

	t.Run("IsResolutionError", func(t *testing.T) {
		assert.False(t, IsResolutionError(errors.New("other")))
		assert.False(t, IsResolutionError(NewConfigError("x", nil, "y")))
	})
}

func TestErrorTypeChecking(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"schema", NewSchemaError("Book", "", "", nil), IsSchemaError},
		{"config", NewConfigError("Target", nil, ""), IsConfigError},
		{"edge", NewEdgeError("Book", "Author", "author", "", nil), IsEdgeError},
		{"generation", NewGenerationError("ddl", "", "", nil), IsGenerationError},
		{"validation", NewValidationError("Book", "", nil, ""), IsValidationError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(fmt.Errorf("wrapped: %w", tt.err)))
			assert.False(t, tt.check(errors.New("plain")))
		})
	}
}
