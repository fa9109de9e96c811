package validate

// Reason is the machine-readable tag attached to every rejection. Clients
// branch on it; humans read the Detail string that travels next to it.
type Reason struct {
	s string
}

var (
	ReasonImageTooSmall      = Reason{"image_too_small"}
	ReasonBlankOrCorrupt     = Reason{"blank_or_corrupt"}
	ReasonMultiplePeople     = Reason{"multiple_people"}
	ReasonPersonTooSmall     = Reason{"person_too_small"}
	ReasonNonFrontalPose     = Reason{"non_frontal_pose"}
	ReasonClothingTooSmall   = Reason{"clothing_too_small"}
	ReasonBlankClothingImage = Reason{"blank_clothing_image"}
	ReasonInvalidItemCount   = Reason{"invalid_item_count"}
	ReasonGenerationEmpty    = Reason{"generation_empty"}
)

func (r Reason) String() string {
	return r.s
}
