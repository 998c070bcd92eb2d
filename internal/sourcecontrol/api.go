package sourcecontrol

// FileAttributes describes how source control sees a file. The zero value means the file is unknown.
type FileAttributes uint32

const (
	AttributeInvalid FileAttributes = 0
	AttributeNormal  FileAttributes = 1 << iota //present on disk, not under source control
	AttributeManaged                            //tracked by source control
	AttributeCheckedOut
)

func (a FileAttributes) Has(flag FileAttributes) bool {
	return a&flag != 0
}

type Flags uint32

const (
	AddWithoutSubmit Flags = 1 << iota
	AddChangelist
	DeleteWithoutSubmit
)

// Api is the source control collaborator. All paths are absolute and system-native.
type Api interface {
	GetFileAttributes(path string) FileAttributes
	CheckOut(path string) error
	Add(path string, changelist string, flags Flags) error
	Delete(path string, changelist string, flags Flags) error
}
