package repositories

var orderFilters = map[string]string{
	"patientId":  "patient_id",
	"doctorId":   "doctor_id",
	"hospitalId": "hospital_id",
	"visitId":    "visit_id",
	"status":     "status",
}

var orderSorts = map[string]string{
	"name":        "name",
	"status":      "status",
	"scheduledAt": "scheduled_at",
	"createdAt":   "created_at",
}

// Query whitelists per resource.
var (
	CitySpec = QuerySpec{
		SearchColumns: []string{"name"},
		SortColumns:   map[string]string{"name": "name", "createdAt": "created_at"},
		DefaultSort:   "name ASC",
	}

	HospitalSpec = QuerySpec{
		SearchColumns: []string{"name", "address"},
		FilterColumns: map[string]string{"cityId": "city_id"},
		SortColumns:   map[string]string{"name": "name", "createdAt": "created_at"},
		DefaultSort:   "name ASC",
		Preloads:      []string{"City"},
	}

	DoctorSpec = QuerySpec{
		SearchColumns: []string{"specialization", "license_number", "phone"},
		FilterColumns: map[string]string{"hospitalId": "hospital_id", "specialization": "specialization"},
		SortColumns:   map[string]string{"specialization": "specialization", "createdAt": "created_at"},
		Preloads:      []string{"User", "Hospital"},
	}

	StaffSpec = QuerySpec{
		SearchColumns: []string{"position", "department", "phone"},
		FilterColumns: map[string]string{"hospitalId": "hospital_id", "department": "department"},
		SortColumns:   map[string]string{"position": "position", "department": "department", "createdAt": "created_at"},
		Preloads:      []string{"User", "Hospital"},
	}

	PatientSpec = QuerySpec{
		SearchColumns: []string{"first_name", "last_name", "patient_number", "phone", "national_id"},
		FilterColumns: map[string]string{"hospitalId": "hospital_id", "cityId": "city_id", "gender": "gender", "bloodType": "blood_type"},
		SortColumns: map[string]string{
			"firstName": "first_name", "lastName": "last_name", "patientNumber": "patient_number",
			"dateOfBirth": "date_of_birth", "createdAt": "created_at",
		},
		Preloads: []string{"Hospital", "City"},
	}

	TestSpec = QuerySpec{
		SearchColumns: []string{"name", "results"},
		FilterColumns: orderFilters,
		SortColumns:   orderSorts,
	}

	TreatmentSpec = QuerySpec{
		SearchColumns: []string{"name", "description"},
		FilterColumns: orderFilters,
		SortColumns:   orderSorts,
	}

	OperationSpec = QuerySpec{
		SearchColumns: []string{"name", "description"},
		FilterColumns: orderFilters,
		SortColumns:   orderSorts,
	}

	DiseaseSpec = QuerySpec{
		SearchColumns: []string{"name", "notes"},
		FilterColumns: map[string]string{
			"patientId": "patient_id", "visitId": "visit_id", "doctorId": "doctor_id",
			"hospitalId": "hospital_id", "status": "status", "severity": "severity",
		},
		SortColumns: map[string]string{"name": "name", "severity": "severity", "diagnosedAt": "diagnosed_at", "createdAt": "created_at"},
	}

	PrescriptionSpec = QuerySpec{
		SearchColumns: []string{"medication", "instructions"},
		FilterColumns: orderFilters,
		SortColumns:   map[string]string{"medication": "medication", "status": "status", "startDate": "start_date", "createdAt": "created_at"},
	}

	VisitSpec = QuerySpec{
		SearchColumns: []string{"diagnosis", "symptoms", "notes"},
		FilterColumns: map[string]string{
			"patientId": "patient_id", "doctorId": "doctor_id", "hospitalId": "hospital_id",
			"cityId": "city_id", "status": "status",
		},
		SortColumns: map[string]string{"scheduledAt": "scheduled_at", "status": "status", "createdAt": "created_at"},
		DefaultSort: "scheduled_at DESC",
		Preloads: []string{
			"Patient", "Doctor", "Doctor.User", "Hospital",
			"Tests", "Diseases", "Treatments", "Operations", "Prescriptions",
		},
	}

	UserSpec = QuerySpec{
		SearchColumns: []string{"email", "name"},
		FilterColumns: map[string]string{"role": "role", "hospitalId": "hospital_id"},
		SortColumns:   map[string]string{"email": "email", "name": "name", "role": "role", "createdAt": "created_at"},
		Preloads:      []string{"AssignedRole"},
	}

	RoleSpec = QuerySpec{
		SearchColumns: []string{"name", "description"},
		SortColumns:   map[string]string{"name": "name"},
		DefaultSort:   "name ASC",
		Preloads:      []string{"Permissions"},
	}
)
