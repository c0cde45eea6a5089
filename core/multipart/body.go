package multipart

import (
	"bytes"
	"io"
	"net/textproto"
	"slices"
)

// File is one uploaded file part.
// Content shares memory with the parsed body.
type File struct {
	Field       string
	Filename    string
	ContentType string // empty when the part declared none
	Header      textproto.MIMEHeader
	Content     []byte
}

// Size returns the content length in bytes.
func (f *File) Size() int64 {
	return int64(len(f.Content))
}

// Open returns a reader over the file content.
func (f *File) Open() io.Reader {
	return bytes.NewReader(f.Content)
}

// Body holds the decoded parts of a multipart/form-data body.
// Every occurrence of a name is kept. Single-value accessors return the last one.
type Body struct {
	fields     map[string][]string
	files      map[string][]*File
	fieldNames []string
	fileNames  []string
}

func newBody() *Body {
	return &Body{
		fields: make(map[string][]string),
		files:  make(map[string][]*File),
	}
}

func (b *Body) addField(name, value string) {
	if _, ok := b.fields[name]; !ok {
		b.fieldNames = append(b.fieldNames, name)
	}
	b.fields[name] = append(b.fields[name], value)
}

func (b *Body) addFile(f *File) {
	if _, ok := b.files[f.Field]; !ok {
		b.fileNames = append(b.fileNames, f.Field)
	}
	b.files[f.Field] = append(b.files[f.Field], f)
}

// Field returns the last value of the named field, or "".
func (b *Body) Field(name string) string {
	vs := b.fields[name]
	if len(vs) == 0 {
		return ""
	}
	return vs[len(vs)-1]
}

// FieldAll returns a copy of every value of the named field in body order.
func (b *Body) FieldAll(name string) []string {
	return slices.Clone(b.fields[name])
}

// File returns the last file sent under name, or nil.
func (b *Body) File(name string) *File {
	fs := b.files[name]
	if len(fs) == 0 {
		return nil
	}
	return fs[len(fs)-1]
}

// FileAll returns a copy of the files sent under name in body order.
// The *File values are shared with the body.
func (b *Body) FileAll(name string) []*File {
	return slices.Clone(b.files[name])
}

func (b *Body) HasField(name string) bool {
	_, ok := b.fields[name]
	return ok
}

func (b *Body) HasFile(name string) bool {
	_, ok := b.files[name]
	return ok
}

// FieldNames lists field names in order of first appearance.
func (b *Body) FieldNames() []string {
	return slices.Clone(b.fieldNames)
}

// FileNames lists file field names in order of first appearance.
func (b *Body) FileNames() []string {
	return slices.Clone(b.fileNames)
}

// Values returns a copy of the fields as a map, matching the shape of url.Values.
func (b *Body) Values() map[string][]string {
	out := make(map[string][]string, len(b.fields))
	for k, vs := range b.fields {
		out[k] = slices.Clone(vs)
	}
	return out
}
