package classifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ariebrainware/clinic-booking/model"
)

const promptTemplate = `You are an AI assistant for a healthcare clinic. The input is a patient's appointment request with details like date, time and doctor preference.

Analyze the reason for visit and extract the relevant information. Based on the reason for visit, suggest the most appropriate medical specialty if no doctor preference is given.

Available specialties: %s.

Return a JSON object with the following fields:
- patient_name: string
- email: string
- phone: string
- requested_date: string (YYYY-MM-DD)
- requested_time: string (HH:MM, 24 hour clock)
- doctor_preference: string (the provided preference, or "Family Medicine" when none is given)
- reason_for_visit: string (cleaned up and professional)
- suggested_specialty: string (one of the available specialties, based on the symptoms)
- priority: string (low, medium or high, based on urgency indicators)

Patient request: %s`

func buildPrompt(req model.AppointmentRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("classifier: encode request: %w", err)
	}
	return fmt.Sprintf(promptTemplate, strings.Join(model.Specialties, ", "), payload), nil
}
