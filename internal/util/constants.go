package util

const DateFormat = "2006-01-02"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 文件上传相关常量
const (
	MimeImage       = "image/"
	MaxAvatarBytes  = 2 << 20
	AvatarKeyPrefix = "avatars/"
)
