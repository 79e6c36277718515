package validators

import "go.mongodb.org/mongo-driver/bson"

var AppointmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"appointment_id",
			"hospital_id",
			"slot_id",
			"slot_number",
			"slot_start_time",
			"slot_end_time",
			"patient_name",
			"patient_email",
			"patient_phone",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"appointment_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"hospital_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"slot_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"slot_number": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"slot_start_time": bson.M{
				"bsonType": "date",
			},

			"slot_end_time": bson.M{
				"bsonType": "date",
			},

			"patient_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"patient_email": bson.M{
				"bsonType":  "string",
				"maxLength": 254,
			},

			"patient_phone": bson.M{
				"bsonType": "string",
				"pattern":  `^\+[1-9]\d{7,14}$`,
			},

			"health_issue": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"status": bson.M{
				"enum": []string{"booked", "checked_in", "cancelled"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"checked_in_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
