package uniform

import "slices"

// Field identifies a primary, directly settable input of the uniform state.
type Field uint8

const (
	FieldView Field = iota
	FieldInverseView
	FieldModel
	FieldProjection
	FieldInfiniteProjection
	FieldCameraPosition
	FieldSunPosition
	FieldViewport
	FieldFrameNumber

	// FieldCount is the number of primary fields.
	FieldCount
)

var fieldNames = [FieldCount]string{
	FieldView:               "view",
	FieldInverseView:        "inverseView",
	FieldModel:              "model",
	FieldProjection:         "projection",
	FieldInfiniteProjection: "infiniteProjection",
	FieldCameraPosition:     "cameraPosition",
	FieldSunPosition:        "sunPosition",
	FieldViewport:           "viewport",
	FieldFrameNumber:        "frameNumber",
}

func (f Field) String() string {
	if f < FieldCount {
		return fieldNames[f]
	}
	return "unknown"
}

// Entry identifies a lazily computed, cached value derived from primary fields and other entries.
type Entry uint8

const (
	EntryInverseModel Entry = iota
	EntryModelView
	EntryModelViewRelativeToEye
	EntryInverseModelView
	EntryInverseProjection
	EntryViewProjection
	EntryInverseViewProjection
	EntryModelViewProjection
	EntryInverseModelViewProjection
	EntryModelViewProjectionRelativeToEye
	EntryModelViewInfiniteProjection
	EntryNormal
	EntryInverseNormal
	EntryViewRotation
	EntryInverseViewRotation
	EntrySunDirectionEC
	EntrySunDirectionWC
	EntryEncodedCameraPosition
	EntryViewportOrthographic
	EntryViewportTransformation
	EntryFrustumPlanes

	// EntryCount is the number of derived entries.
	EntryCount
)

var entryNames = [EntryCount]string{
	EntryInverseModel:                     "inverseModel",
	EntryModelView:                        "modelView",
	EntryModelViewRelativeToEye:           "modelViewRelativeToEye",
	EntryInverseModelView:                 "inverseModelView",
	EntryInverseProjection:                "inverseProjection",
	EntryViewProjection:                   "viewProjection",
	EntryInverseViewProjection:            "inverseViewProjection",
	EntryModelViewProjection:              "modelViewProjection",
	EntryInverseModelViewProjection:       "inverseModelViewProjection",
	EntryModelViewProjectionRelativeToEye: "modelViewProjectionRelativeToEye",
	EntryModelViewInfiniteProjection:      "modelViewInfiniteProjection",
	EntryNormal:                           "normal",
	EntryInverseNormal:                    "inverseNormal",
	EntryViewRotation:                     "viewRotation",
	EntryInverseViewRotation:              "inverseViewRotation",
	EntrySunDirectionEC:                   "sunDirectionEC",
	EntrySunDirectionWC:                   "sunDirectionWC",
	EntryEncodedCameraPosition:            "encodedCameraPosition",
	EntryViewportOrthographic:             "viewportOrthographic",
	EntryViewportTransformation:           "viewportTransformation",
	EntryFrustumPlanes:                    "frustumPlanes",
}

func (e Entry) String() string {
	if e < EntryCount {
		return entryNames[e]
	}
	return "unknown"
}

// dependents maps each primary field to every entry that must be marked dirty when the field changes.
// Each list is the transitive closure over entryInputs; dependency_test.go keeps the two in sync.
var dependents = [FieldCount][]Entry{
	FieldView: {
		EntryModelView,
		EntryModelViewRelativeToEye,
		EntryInverseModelView,
		EntryViewProjection,
		EntryInverseViewProjection,
		EntryModelViewProjection,
		EntryInverseModelViewProjection,
		EntryModelViewProjectionRelativeToEye,
		EntryModelViewInfiniteProjection,
		EntryNormal,
		EntryInverseNormal,
		EntryViewRotation,
		EntrySunDirectionEC,
		EntryFrustumPlanes,
	},
	FieldInverseView: {
		EntryInverseViewRotation,
	},
	FieldModel: {
		EntryInverseModel,
		EntryModelView,
		EntryModelViewRelativeToEye,
		EntryInverseModelView,
		EntryModelViewProjection,
		EntryInverseModelViewProjection,
		EntryModelViewProjectionRelativeToEye,
		EntryModelViewInfiniteProjection,
		EntryNormal,
		EntryInverseNormal,
		EntryEncodedCameraPosition,
	},
	FieldProjection: {
		EntryInverseProjection,
		EntryViewProjection,
		EntryInverseViewProjection,
		EntryModelViewProjection,
		EntryInverseModelViewProjection,
		EntryModelViewProjectionRelativeToEye,
		EntryFrustumPlanes,
	},
	FieldInfiniteProjection: {
		EntryModelViewInfiniteProjection,
	},
	FieldCameraPosition: {
		EntryEncodedCameraPosition,
	},
	FieldSunPosition: {
		EntrySunDirectionEC,
		EntrySunDirectionWC,
	},
	FieldViewport: {
		EntryViewportOrthographic,
		EntryViewportTransformation,
	},
	FieldFrameNumber: nil,
}

// inputs lists what a single entry's formula reads directly.
type inputs struct {
	fields  []Field
	entries []Entry
}

var entryInputs = [EntryCount]inputs{
	EntryInverseModel:                     {fields: []Field{FieldModel}},
	EntryModelView:                        {fields: []Field{FieldView, FieldModel}},
	EntryModelViewRelativeToEye:           {entries: []Entry{EntryModelView}},
	EntryInverseModelView:                 {entries: []Entry{EntryModelView}},
	EntryInverseProjection:                {fields: []Field{FieldProjection}},
	EntryViewProjection:                   {fields: []Field{FieldProjection, FieldView}},
	EntryInverseViewProjection:            {entries: []Entry{EntryViewProjection}},
	EntryModelViewProjection:              {fields: []Field{FieldProjection}, entries: []Entry{EntryModelView}},
	EntryInverseModelViewProjection:       {entries: []Entry{EntryModelViewProjection}},
	EntryModelViewProjectionRelativeToEye: {fields: []Field{FieldProjection}, entries: []Entry{EntryModelViewRelativeToEye}},
	EntryModelViewInfiniteProjection:      {fields: []Field{FieldInfiniteProjection}, entries: []Entry{EntryModelView}},
	EntryNormal:                           {entries: []Entry{EntryInverseModelView}},
	EntryInverseNormal:                    {entries: []Entry{EntryInverseModelView}},
	EntryViewRotation:                     {fields: []Field{FieldView}},
	EntryInverseViewRotation:              {fields: []Field{FieldInverseView}},
	EntrySunDirectionEC:                   {fields: []Field{FieldSunPosition}, entries: []Entry{EntryViewRotation}},
	EntrySunDirectionWC:                   {fields: []Field{FieldSunPosition}},
	EntryEncodedCameraPosition:            {fields: []Field{FieldCameraPosition}, entries: []Entry{EntryInverseModel}},
	EntryViewportOrthographic:             {fields: []Field{FieldViewport}},
	EntryViewportTransformation:           {fields: []Field{FieldViewport}},
	EntryFrustumPlanes:                    {entries: []Entry{EntryViewProjection}},
}

// Dependents returns the entries invalidated by a change to f.
//
// Parameters:
//   - f: the primary field
//
// Returns:
//   - []Entry: a copy of the static dependents list
func Dependents(f Field) []Entry {
	if f >= FieldCount {
		return nil
	}
	return slices.Clone(dependents[f])
}

// Inputs returns the fields and entries the formula of e reads directly.
//
// Parameters:
//   - e: the derived entry
//
// Returns:
//   - []Field: primary fields read by the formula
//   - []Entry: derived entries read by the formula
func Inputs(e Entry) ([]Field, []Entry) {
	if e >= EntryCount {
		return nil, nil
	}
	in := entryInputs[e]
	return slices.Clone(in.fields), slices.Clone(in.entries)
}
