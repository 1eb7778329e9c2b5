package detection

// Reason codes carried by findings.
const (
	ReasonDomainNotAllowed     = "domain_not_allowed"
	ReasonHeaderDomainMismatch = "header_domain_mismatch"
	ReasonRiskyAttachment      = "risky_extension_or_size"
	ReasonAnchorRedirect       = "anchor_redirect_mismatch"
	ReasonUnicodeHomograph     = "unicode_homograph"
	ReasonNumericTyposquat     = "numeric_typosquatting"
	ReasonDisplayNameSpoofing  = "display_name_spoofing"
	ReasonDoubleExtension      = "double_extension"
	ReasonHTMLForm             = "html_form_submission"
	ReasonClickableImage       = "clickable_image_link"
	ReasonSocialEngineering    = "social_engineering_language"
	ReasonBrandImpersonation   = "brand_impersonation_variant"
	ReasonRiskyTLD             = "risky_tld"
	ReasonInvisibleCharacters  = "invisible_characters"
)

// Protocol names used by AuthFailure.Method.
const (
	MethodSPF   = "SPF"
	MethodDKIM  = "DKIM"
	MethodDMARC = "DMARC"
)

type SuspiciousLink struct {
	Link   string `json:"link"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

func (SuspiciousLink) Category() Category { return CategorySuspiciousLinks }
func (f SuspiciousLink) Code() string     { return f.Reason }

// HeaderIssue serializes as its bare code.
type HeaderIssue string

func (HeaderIssue) Category() Category { return CategoryHeaderIssues }
func (f HeaderIssue) Code() string     { return string(f) }

type RiskyAttachment struct {
	Filename string `json:"filename"`
	Size     int    `json:"size"`
	Reason   string `json:"reason"`
}

func (RiskyAttachment) Category() Category { return CategoryRiskyAttachments }
func (f RiskyAttachment) Code() string     { return f.Reason }

type AnchorRedirect struct {
	DisplayText   string `json:"display_text"`
	URL           string `json:"url"`
	DisplayDomain string `json:"display_domain"`
	URLDomain     string `json:"url_domain"`
	Reason        string `json:"reason"`
}

func (AnchorRedirect) Category() Category { return CategoryAnchorRedirect }
func (f AnchorRedirect) Code() string     { return f.Reason }

type Typosquat struct {
	Domain string `json:"domain"`
	Reason string `json:"reason"`
}

func (Typosquat) Category() Category { return CategoryTyposquatting }
func (f Typosquat) Code() string     { return f.Reason }

type DisplaySpoof struct {
	DisplayName string `json:"display_name"`
	Domain      string `json:"domain"`
	Reason      string `json:"reason"`
}

func (DisplaySpoof) Category() Category { return CategoryDisplaySpoof }
func (f DisplaySpoof) Code() string     { return f.Reason }

// AuthFailure is a header-forgery hit. Reason holds the lowercased header
// text that matched.
type AuthFailure struct {
	Method string `json:"method"`
	Result string `json:"result"`
	Reason string `json:"reason"`
}

func (AuthFailure) Category() Category { return CategoryHeaderForgery }
func (f AuthFailure) Code() string     { return f.Result }

type DoubleExtension struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

func (DoubleExtension) Category() Category { return CategoryDoubleExtension }
func (f DoubleExtension) Code() string     { return f.Reason }

type HTMLForm struct {
	Action string `json:"action,omitempty"`
	Reason string `json:"reason"`
}

func (HTMLForm) Category() Category { return CategoryHTMLForms }
func (f HTMLForm) Code() string     { return f.Reason }

type ClickableImage struct {
	Link   string `json:"link"`
	Reason string `json:"reason"`
}

func (ClickableImage) Category() Category { return CategoryClickableImages }
func (f ClickableImage) Code() string     { return f.Reason }

type SocialEngineering struct {
	Phrase  string `json:"phrase"`
	Snippet string `json:"snippet"`
	Reason  string `json:"reason"`
}

func (SocialEngineering) Category() Category { return CategorySocialEngineering }
func (f SocialEngineering) Code() string     { return f.Reason }

type BrandImpersonation struct {
	DisplayName string `json:"display_name"`
	Domain      string `json:"domain"`
	Variant     string `json:"variant"`
	Reason      string `json:"reason"`
}

func (BrandImpersonation) Category() Category { return CategoryBrandImpersonation }
func (f BrandImpersonation) Code() string     { return f.Reason }

type RiskyTLD struct {
	Link   string `json:"link"`
	Domain string `json:"domain"`
	TLD    string `json:"tld"`
	Reason string `json:"reason"`
}

func (RiskyTLD) Category() Category { return CategoryRiskyTLDs }
func (f RiskyTLD) Code() string     { return f.Reason }

// Obfuscation reports a body part padded with invisible characters. Part is
// "text" or "html"; Index counts within that kind.
type Obfuscation struct {
	Part      string `json:"part"`
	Index     int    `json:"index"`
	Invisible int    `json:"invisible"`
	Total     int    `json:"total"`
	Reason    string `json:"reason"`
}

func (Obfuscation) Category() Category { return CategoryObfuscation }
func (f Obfuscation) Code() string     { return f.Reason }
