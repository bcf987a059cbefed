package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnake(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Username", "username"},
		{"FullName", "full_name"},
		{"HTTPCode", "http_code"},
		{"UserID", "user_id"},
		{"XMLParser", "xml_parser"},
		{"getHTTPResponse", "get_http_response"},
		{"already_snake", "already_snake"},
		{"A", "a"},
		{"AB", "ab"},
		{"ABC", "abc"},
		{"", ""},
		{"publishDate", "publish_date"},
		{"PHBOrg", "phb_org"},
		{"UserIDs", "user_ids"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, snake(tt.input))
		})
	}
}

func TestPascal(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"user_info", "UserInfo"},
		{"full_name", "FullName"},
		{"user_id", "UserID"},
		{"http_code", "HTTPCode"},
		{"full-admin", "FullAdmin"},
		{"already", "Already"},
		{"a", "A"},
		{"a_b", "AB"},
		{"xml_parser", "XMLParser"},
		{"api_url", "APIURL"},
		{"acme.bookstore", "AcmeBookstore"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, pascal(tt.input))
		})
	}
}

func TestCamel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"user_info", "userInfo"},
		{"user_id", "userID"},
		{"http_code", "httpCode"},
		{"full-admin", "fullAdmin"},
		{"already", "already"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, camel(tt.input))
		})
	}
}

func TestGoName(t *testing.T) {
	assert.Equal(t, "PublishDate", goName("publishDate"))
	assert.Equal(t, "AuthorID", goName("authorId"))
	assert.Equal(t, "AuthorID", goName("author_id"))
	assert.Equal(t, "IsPublished", goName("isPublished"))
}

func TestReceiver(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"User", "u"},
		{"UserQuery", "uq"},
		{"[]User", "u"},
		{"*User", "u"},
		{"HTTPClient", "hc"},
		{"A", "a"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, receiver(tt.input))
		})
	}
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "Users", plural("User"))
	assert.Equal(t, "Categories", plural("Category"))
	assert.Equal(t, "Books", plural("Book"))
}

func TestAddAcronym(t *testing.T) {
	AddAcronym("STRATA")
	assert.Equal(t, "STRATATest", pascal("strata_test"))
}

func TestFilePath(t *testing.T) {
	tests := []struct {
		path, class, ext string
		expected         string
	}{
		{"", "Book", ".go", "Book.go"},
		{".acme.store", "Book", ".go", "acme/store/Book.go"},
		{"acme.store", "Book", ".go", "acme/store/Book.go"},
		{"..acme", "Book", ".sql", "acme/Book.sql"},
		{"acme.store", "", ".go", "acme/store.go"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FilePath(tt.path, tt.class, tt.ext))
		})
	}
}

func TestCreateFilePath(t *testing.T) {
	assert.Equal(t, "x.go", CreateFilePath("x", "", ".go"))
	assert.Equal(t, "Book.go", CreateFilePath("", "Book", ".go"))
	assert.Equal(t, "a/b/Book.go", CreateFilePath("a/b", "Book", ".go"))
}

func TestNamespaceDir(t *testing.T) {
	assert.Equal(t, "acme/bookstore", NamespaceDir(`Acme\Bookstore`))
	assert.Equal(t, "acme/bookstore", NamespaceDir("acme.bookstore"))
	assert.Equal(t, "acme", NamespaceDir(`\Acme\`))
	assert.Empty(t, NamespaceDir(""))
}

func TestSafeIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"type", "type_"},
		{"string", "string_"},
		{"Save", "Save_"},
		{"title", "title"},
		{"Title", "Title"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SafeIdent(tt.input))
		})
	}
}

func TestIsSeparator(t *testing.T) {
	for _, r := range "_- .\\" {
		assert.True(t, isSeparator(r), string(r))
	}
	assert.False(t, isSeparator('a'))
}
