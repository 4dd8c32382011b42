package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HealthConditions records the checkboxes of the declaration form.
// Surgeries and other medical issues carry free-text details that are
// mandatory when the corresponding flag is set.
type HealthConditions struct {
	SkinDiseases          bool              `bson:"skin_diseases" json:"skinDiseases"`
	HeartDiseases         bool              `bson:"heart_diseases" json:"heartDiseases"`
	Diabetes              bool              `bson:"diabetes" json:"diabetes"`
	BloodPressure         bool              `bson:"blood_pressure" json:"bloodPressure"`
	SpineProblems         bool              `bson:"spine_problems" json:"spineProblems"`
	FracturesOrSprains    bool              `bson:"fractures_or_sprains" json:"fracturesOrSprains"`
	FluFeverInflammation  bool              `bson:"flu_fever_inflammation" json:"fluFeverInflammation"`
	Epilepsy              bool              `bson:"epilepsy" json:"epilepsy"`
	Surgeries             ConditionDetails  `bson:"surgeries" json:"surgeries"`
	ChronicMedications    bool              `bson:"chronic_medications" json:"chronicMedications"`
	Pregnancy             bool              `bson:"pregnancy" json:"pregnancy"`
	OtherMedicalIssues    ConditionDetails  `bson:"other_medical_issues" json:"otherMedicalIssues"`
}

// ConditionDetails is a flag with an optional free-text elaboration
type ConditionDetails struct {
	Present bool   `bson:"present" json:"present"`
	Details string `bson:"details,omitempty" json:"details,omitempty"`
}

// HealthDeclaration is one submitted health-declaration form. Signature
// holds the data-URL of the client-side signature pad and is excluded from
// list responses.
type HealthDeclaration struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName              string             `bson:"full_name" json:"fullName"`
	IDNumber              string             `bson:"id_number" json:"idNumber"`
	PhoneNumber           string             `bson:"phone_number" json:"phoneNumber"`
	HealthConditions      HealthConditions   `bson:"health_conditions" json:"healthConditions"`
	DeclarationConfirmed  bool               `bson:"declaration_confirmed" json:"declarationConfirmed"`
	Signature             string             `bson:"signature,omitempty" json:"signature,omitempty"`
	IPAddress             string             `bson:"ip_address,omitempty" json:"ipAddress,omitempty"`
	CreatedAt             time.Time          `bson:"created_at" json:"createdAt"`
}

// DeclarationStats counts submissions over the dashboard time windows
type DeclarationStats struct {
	Total     int64 `json:"total"`
	Today     int64 `json:"today"`
	ThisWeek  int64 `json:"thisWeek"`
	ThisMonth int64 `json:"thisMonth"`
}
