package model

// ResourceType is the tag identifying one of the content kinds that take
// part in the recycle-bin lifecycle.
type ResourceType string

const (
	ResourceProgram    ResourceType = "program"
	ResourceDepartment ResourceType = "department"
	ResourceFaculty    ResourceType = "faculty"
	ResourcePage       ResourceType = "page"
	ResourceMedia      ResourceType = "media"
	ResourceNews       ResourceType = "news"
	ResourceEvent      ResourceType = "event"
	ResourceComponent  ResourceType = "component"
	ResourcePost       ResourceType = "post"
	ResourceBanner     ResourceType = "banner"
	ResourceTemplate   ResourceType = "template"
)

// ResourceTypes lists every registered kind in registration order.
var ResourceTypes = []ResourceType{
	ResourceProgram,
	ResourceDepartment,
	ResourceFaculty,
	ResourcePage,
	ResourceMedia,
	ResourceNews,
	ResourceEvent,
	ResourceComponent,
	ResourcePost,
	ResourceBanner,
	ResourceTemplate,
}

func (t ResourceType) String() string { return string(t) }

// ParseResourceType returns ErrUnknownResourceType for tags outside ResourceTypes.
func ParseResourceType(raw string) (ResourceType, error) {
	for _, candidate := range ResourceTypes {
		if string(candidate) == raw {
			return candidate, nil
		}
	}

	return "", ErrUnknownResourceType
}
