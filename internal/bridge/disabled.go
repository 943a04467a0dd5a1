package bridge

import "context"

// Disabled is the bridge of a browser-only session: no native storage at all
type Disabled struct{}

var _ Bridge = Disabled{}

func (Disabled) IsNativePlatform() bool { return false }

func (Disabled) Copy(context.Context, CopyOptions) error { return ErrUnavailable }

func (Disabled) WriteFile(context.Context, WriteOptions) error { return ErrUnavailable }

func (Disabled) AppendFile(context.Context, AppendOptions) error { return ErrUnavailable }

func (Disabled) GetURI(context.Context, string, Directory) (string, error) {
	return "", ErrUnavailable
}

func (Disabled) Readdir(context.Context, string, Directory) ([]DirEntry, error) {
	return nil, ErrUnavailable
}

func (Disabled) Stat(context.Context, string, Directory) (FileStat, error) {
	return FileStat{}, ErrUnavailable
}

func (Disabled) DeleteFile(context.Context, string, Directory) error { return ErrUnavailable }

func (Disabled) ConvertFileSrc(uri string) string { return uri }
