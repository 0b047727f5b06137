package rubric_test

import (
	"errors"
	"testing"

	model "github.com/ngage-io/tally/internal/domain/model"
	rubric "github.com/ngage-io/tally/internal/domain/rubric"
	. "github.com/smartystreets/goconvey/convey"
)

func judgingRubric() model.ScoringRubric {
	return model.ScoringRubric{
		ID:   "rubric-1",
		Name: "Demo Day",
		Criteria: []model.ScoringCriterion{
			{Key: "creativity", Name: "Creativity", Type: model.CriterionNumeric, MaxScore: 100, Weight: 2, Required: true},
			{Key: "impact", Name: "Impact", Type: model.CriterionScale, MinScore: 1, MaxScore: 5, Weight: 1},
			{Key: "demo", Name: "Working Demo", Type: model.CriterionBoolean, MaxScore: 10, Weight: 1},
		},
	}
}

func TestValidate(t *testing.T) {
	Convey("Given a rubric with numeric, scale and boolean criteria", t, func() {
		r := judgingRubric()

		Convey("When a complete valid submission is validated", func() {
			values, err := rubric.Validate(map[string]any{
				"creativity": 85.0,
				"impact":     4,
				"demo":       true,
			}, r)

			Convey("Then it should normalize every value", func() {
				So(err, ShouldBeNil)
				So(values["creativity"], ShouldResemble, model.NumberValue(85))
				So(values["impact"], ShouldResemble, model.NumberValue(4))
				So(values["demo"], ShouldResemble, model.BoolValue(true))
			})
		})

		Convey("When a value exceeds the criterion max", func() {
			_, err := rubric.Validate(map[string]any{
				"creativity": 150.0,
			}, r)

			Convey("Then it should fail with an out-of-range error naming the key and bounds", func() {
				var oor *rubric.OutOfRangeError
				So(errors.As(err, &oor), ShouldBeTrue)
				So(oor.Key, ShouldEqual, "creativity")
				So(oor.Value, ShouldEqual, 150)
				So(oor.Min, ShouldEqual, 0)
				So(oor.Max, ShouldEqual, 100)
				So(errors.Is(err, rubric.ErrValidation), ShouldBeTrue)
			})
		})

		Convey("When a scale value is below the declared minimum", func() {
			_, err := rubric.Validate(map[string]any{
				"creativity": 50.0,
				"impact":     0,
			}, r)

			Convey("Then it should fail with scale bounds", func() {
				var oor *rubric.OutOfRangeError
				So(errors.As(err, &oor), ShouldBeTrue)
				So(oor.Key, ShouldEqual, "impact")
				So(oor.Min, ShouldEqual, 1)
				So(oor.Max, ShouldEqual, 5)
			})
		})

		Convey("When a required criterion is missing", func() {
			_, err := rubric.Validate(map[string]any{
				"impact": 3,
			}, r)

			Convey("Then it should fail with a missing-required error", func() {
				var missing *rubric.MissingRequiredFieldError
				So(errors.As(err, &missing), ShouldBeTrue)
				So(missing.Key, ShouldEqual, "creativity")
			})
		})

		Convey("When a required criterion is present but blank", func() {
			_, err := rubric.Validate(map[string]any{
				"creativity": "  ",
			}, r)

			Convey("Then blank counts as absent", func() {
				var missing *rubric.MissingRequiredFieldError
				So(errors.As(err, &missing), ShouldBeTrue)
				So(missing.Key, ShouldEqual, "creativity")
			})
		})

		Convey("When an unknown key is submitted", func() {
			_, err := rubric.Validate(map[string]any{
				"creativity": 10.0,
				"polish":     5.0,
			}, r)

			Convey("Then it should fail with an unknown-criterion error", func() {
				var unknown *rubric.UnknownCriterionError
				So(errors.As(err, &unknown), ShouldBeTrue)
				So(unknown.Key, ShouldEqual, "polish")
			})
		})

		Convey("When boolean values arrive in the client's string convention", func() {
			values, err := rubric.Validate(map[string]any{
				"creativity": 10.0,
				"demo":       "1",
			}, r)

			Convey("Then they should be normalized to real booleans", func() {
				So(err, ShouldBeNil)
				So(values["demo"], ShouldResemble, model.BoolValue(true))
			})
		})

		Convey("When a boolean value cannot be coerced", func() {
			_, err := rubric.Validate(map[string]any{
				"creativity": 10.0,
				"demo":       "maybe",
			}, r)

			Convey("Then it should fail with an invalid-type error", func() {
				var invalid *rubric.InvalidTypeError
				So(errors.As(err, &invalid), ShouldBeTrue)
				So(invalid.Key, ShouldEqual, "demo")
			})
		})

		Convey("When a numeric value is a boolean", func() {
			_, err := rubric.Validate(map[string]any{
				"creativity": true,
			}, r)

			Convey("Then it should fail with an invalid-type error", func() {
				var invalid *rubric.InvalidTypeError
				So(errors.As(err, &invalid), ShouldBeTrue)
				So(invalid.Key, ShouldEqual, "creativity")
			})
		})
	})
}

func TestValidateDefinition(t *testing.T) {
	Convey("Given rubric definitions", t, func() {
		Convey("When the definition is well-formed", func() {
			err := rubric.ValidateDefinition(judgingRubric())

			Convey("Then it should pass", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When a criterion has a non-positive max score", func() {
			r := judgingRubric()
			r.Criteria[0].MaxScore = 0
			err := rubric.ValidateDefinition(r)

			Convey("Then it should be rejected", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, rubric.ErrInvalidDefinition), ShouldBeTrue)
			})
		})

		Convey("When a criterion has a non-positive weight", func() {
			r := judgingRubric()
			r.Criteria[1].Weight = 0
			err := rubric.ValidateDefinition(r)

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, rubric.ErrInvalidDefinition), ShouldBeTrue)
			})
		})

		Convey("When two criteria share a key", func() {
			r := judgingRubric()
			r.Criteria[1].Key = "creativity"
			err := rubric.ValidateDefinition(r)

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, rubric.ErrInvalidDefinition), ShouldBeTrue)
			})
		})

		Convey("When the rubric has no criteria", func() {
			r := judgingRubric()
			r.Criteria = nil
			err := rubric.ValidateDefinition(r)

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, rubric.ErrInvalidDefinition), ShouldBeTrue)
			})
		})

		Convey("When a scale criterion has min >= max", func() {
			r := judgingRubric()
			r.Criteria[1].MinScore = 5
			err := rubric.ValidateDefinition(r)

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, rubric.ErrInvalidDefinition), ShouldBeTrue)
			})
		})
	})
}
