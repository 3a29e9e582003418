package service

import (
	"bytes"
	"context"
	"text/template"

	"blood-request-coordinator/internal/models"
)

var englishShare = template.Must(template.New("english").Parse(`*URGENT BLOOD REQUEST*

A patient at *{{.HospitalName}}* is in critical need of blood.

*Blood Group:* {{.BloodGroup}}
*Units Required:* {{.Units}}
*Urgency:* {{.Urgency}}
{{if .PatientStory}}*Patient Story:* {{.PatientStory}}
{{end}}
Please help save a life. Your donation is invaluable.

*Verify this request and check its status at:*
{{.VerificationURL}}

Thank you for your support!`))

var hindiShare = template.Must(template.New("hindi").Parse(`*तत्काल रक्त की आवश्यकता*

*{{.HospitalName}}* में एक मरीज को तत्काल रक्त की आवश्यकता है।

*ब्लड ग्रुप:* {{.BloodGroup}}
*यूनिट की आवश्यकता:* {{.Units}}
*अविलंबता:* {{.Urgency}}
{{if .PatientStory}}*मरीज की कहानी:* {{.PatientStory}}
{{end}}
कृपया एक जीवन बचाने में मदद करें। आपका रक्तदान अमूल्य है।

*इस अनुरोध को सत्यापित करें और इसकी स्थिति जांचें:*
{{.VerificationURL}}

आपके सहयोग के लिए धन्यवाद!`))

// ShareMessages are ready-to-paste appeals for messaging apps
type ShareMessages struct {
	RequestID       string `json:"requestId"`
	VerificationURL string `json:"verificationUrl"`
	English         string `json:"english"`
	Hindi           string `json:"hindi"`
}

type ShareService struct {
	queries *QueryService
	baseURL string
}

func NewShareService(queries *QueryService, publicBaseURL string) *ShareService {
	return &ShareService{queries: queries, baseURL: publicBaseURL}
}

// VerificationURL is the public page that shows the live state of a request
func (s *ShareService) VerificationURL(id string) string {
	return s.baseURL + "/?requestId=" + id
}

func (s *ShareService) Messages(ctx context.Context, id string) (*ShareMessages, error) {
	request, err := s.queries.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, notFound(MsgRequestMissing)
	}
	return s.render(request)
}

func (s *ShareService) render(request *models.BloodRequest) (*ShareMessages, error) {
	data := struct {
		*models.BloodRequest
		VerificationURL string
	}{request, s.VerificationURL(request.ID)}

	var english, hindi bytes.Buffer
	if err := englishShare.Execute(&english, data); err != nil {
		return nil, translate("shareMessages", err, "Failed to prepare share message.")
	}
	if err := hindiShare.Execute(&hindi, data); err != nil {
		return nil, translate("shareMessages", err, "Failed to prepare share message.")
	}

	return &ShareMessages{
		RequestID:       request.ID,
		VerificationURL: data.VerificationURL,
		English:         english.String(),
		Hindi:           hindi.String(),
	}, nil
}
