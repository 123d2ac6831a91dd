package uniform

import "slices"

// Name is the shader-facing identifier of a uniform.
type Name string

// Uniform names shared with shader code. Each resolves through exactly one getter.
const (
	NameView                             Name = "view"
	NameInverseView                      Name = "inverseView"
	NameModel                            Name = "model"
	NameInverseModel                     Name = "inverseModel"
	NameProjection                       Name = "projection"
	NameInverseProjection                Name = "inverseProjection"
	NameInfiniteProjection               Name = "infiniteProjection"
	NameModelView                        Name = "modelView"
	NameModelViewRelativeToEye           Name = "modelViewRelativeToEye"
	NameInverseModelView                 Name = "inverseModelView"
	NameViewProjection                   Name = "viewProjection"
	NameInverseViewProjection            Name = "inverseViewProjection"
	NameModelViewProjection              Name = "modelViewProjection"
	NameInverseModelViewProjection       Name = "inverseModelViewProjection"
	NameModelViewProjectionRelativeToEye Name = "modelViewProjectionRelativeToEye"
	NameModelViewInfiniteProjection      Name = "modelViewInfiniteProjection"
	NameNormal                           Name = "normal"
	NameInverseNormal                    Name = "inverseNormal"
	NameViewRotation                     Name = "viewRotation"
	NameInverseViewRotation              Name = "inverseViewRotation"
	NameSunDirectionEC                   Name = "sunDirectionEC"
	NameSunDirectionWC                   Name = "sunDirectionWC"
	NameEncodedCameraPositionMCHigh      Name = "encodedCameraPositionMCHigh"
	NameEncodedCameraPositionMCLow       Name = "encodedCameraPositionMCLow"
	NameViewport                         Name = "viewport"
	NameViewportOrthographic             Name = "viewportOrthographic"
	NameViewportTransformation           Name = "viewportTransformation"
	NameFrameNumber                      Name = "frameNumber"
)

// bindings maps each uniform name to its accessor. Accessors run with the mutex held.
var bindings = map[Name]func(s *uniformState) any{
	NameView:                             func(s *uniformState) any { return s.view },
	NameInverseView:                      func(s *uniformState) any { return s.inverseView },
	NameModel:                            func(s *uniformState) any { return s.model },
	NameInverseModel:                     func(s *uniformState) any { return s.inverseModel() },
	NameProjection:                       func(s *uniformState) any { return s.projection },
	NameInverseProjection:                func(s *uniformState) any { return s.inverseProjection() },
	NameInfiniteProjection:               func(s *uniformState) any { return s.infiniteProjection },
	NameModelView:                        func(s *uniformState) any { return s.modelView() },
	NameModelViewRelativeToEye:           func(s *uniformState) any { return s.modelViewRelativeToEye() },
	NameInverseModelView:                 func(s *uniformState) any { return s.inverseModelView() },
	NameViewProjection:                   func(s *uniformState) any { return s.viewProjection() },
	NameInverseViewProjection:            func(s *uniformState) any { return s.inverseViewProjection() },
	NameModelViewProjection:              func(s *uniformState) any { return s.modelViewProjection() },
	NameInverseModelViewProjection:       func(s *uniformState) any { return s.inverseModelViewProjection() },
	NameModelViewProjectionRelativeToEye: func(s *uniformState) any { return s.modelViewProjectionRelativeToEye() },
	NameModelViewInfiniteProjection:      func(s *uniformState) any { return s.modelViewInfiniteProjection() },
	NameNormal:                           func(s *uniformState) any { return s.normal() },
	NameInverseNormal:                    func(s *uniformState) any { return s.inverseNormal() },
	NameViewRotation:                     func(s *uniformState) any { return s.viewRotation() },
	NameInverseViewRotation:              func(s *uniformState) any { return s.inverseViewRotation() },
	NameSunDirectionEC:                   func(s *uniformState) any { return s.sunDirectionEC() },
	NameSunDirectionWC:                   func(s *uniformState) any { return s.sunDirectionWC() },
	NameEncodedCameraPositionMCHigh:      func(s *uniformState) any { return s.encodedCameraPosition().High },
	NameEncodedCameraPositionMCLow:       func(s *uniformState) any { return s.encodedCameraPosition().Low },
	NameViewport:                         func(s *uniformState) any { return s.viewport },
	NameViewportOrthographic:             func(s *uniformState) any { return s.viewportOrthographic() },
	NameViewportTransformation:           func(s *uniformState) any { return s.viewportTransformation() },
	NameFrameNumber:                      func(s *uniformState) any { return s.frameNumber },
}

// Names returns every uniform name in the binding table, sorted.
//
// Returns:
//   - []Name: the sorted names
func Names() []Name {
	names := make([]Name, 0, len(bindings))
	for n := range bindings {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (s *uniformState) Value(name Name) (any, bool) {
	get, ok := bindings[name]
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return get(s), true
}
