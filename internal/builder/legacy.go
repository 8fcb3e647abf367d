package builder

import (
	"fmt"

	"github.com/google/uuid"
)

// NewContentImageName returns the name of the legacy-backend throwaway
// content image: the fixed base "dev_container_feature_content_temp"
// followed by a google/uuid.New() suffix, so concurrent builds on one
// host never share a content image name.
func NewContentImageName() string {
	return fmt.Sprintf("dev_container_feature_content_temp_%s", uuid.New().String())
}
