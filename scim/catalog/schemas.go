package catalog

const (
	UserURN           = "urn:ietf:params:scim:schemas:core:2.0:User"
	GroupURN          = "urn:ietf:params:scim:schemas:core:2.0:Group"
	enterpriseUserURN = "urn:ietf:params:scim:schemas:extension:enterprise:2.0:User"
	ListResponseURN   = "urn:ietf:params:scim:api:messages:2.0:ListResponse"
	ErrorURN          = "urn:ietf:params:scim:api:messages:2.0:Error"
	PatchOpURN        = "urn:ietf:params:scim:api:messages:2.0:PatchOp"
)

// EnterpriseUserURN exposes the extension URN for callers outside the package.
const EnterpriseUserURN = enterpriseUserURN

func readOnlyID() Attribute {
	return Attribute{Name: "id", Type: TypeString, CaseExact: true, Mutability: MutabilityReadOnly, Returned: ReturnedAlways, Uniqueness: UniquenessServer}
}

func externalID() Attribute {
	return Attribute{Name: "externalId", Type: TypeString, CaseExact: true, Mutability: MutabilityReadWrite, Returned: ReturnedDefault}
}

func namedValueType(caseExactValue bool) []Attribute {
	return []Attribute{
		{Name: "value", Type: TypeString, CaseExact: caseExactValue, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
		{Name: "display", Type: TypeString, CaseExact: false, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
		{Name: "type", Type: TypeString, CaseExact: false, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
		{Name: "primary", Type: TypeBoolean, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
	}
}

func multiValued(name string, sub []Attribute) Attribute {
	return Attribute{
		Name: name, Type: TypeComplex, MultiValued: true,
		Mutability: MutabilityReadWrite, Returned: ReturnedDefault,
		SubAttributes: sub,
	}
}

func metaSchema() Schema {
	return Schema{
		ID:   "urn:ietf:params:scim:schemas:core:2.0:Meta",
		Name: "Meta",
		Attributes: []Attribute{
			{Name: "resourceType", Type: TypeString, Mutability: MutabilityReadOnly, Returned: ReturnedDefault, CaseExact: true},
			{Name: "created", Type: TypeDateTime, Mutability: MutabilityReadOnly, Returned: ReturnedDefault},
			{Name: "lastModified", Type: TypeDateTime, Mutability: MutabilityReadOnly, Returned: ReturnedDefault},
			{Name: "location", Type: TypeReference, Mutability: MutabilityReadOnly, Returned: ReturnedDefault, CaseExact: true},
			{Name: "version", Type: TypeString, Mutability: MutabilityReadOnly, Returned: ReturnedDefault, CaseExact: true},
		},
	}
}

func userSchema() Schema {
	return Schema{
		ID:   UserURN,
		Name: "User",
		Attributes: []Attribute{
			readOnlyID(),
			externalID(),
			{Name: "userName", Type: TypeString, Required: true, CaseExact: false, Mutability: MutabilityReadWrite, Returned: ReturnedDefault, Uniqueness: UniquenessServer},
			{
				Name: "name", Type: TypeComplex, Mutability: MutabilityReadWrite, Returned: ReturnedDefault,
				SubAttributes: []Attribute{
					{Name: "formatted", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
					{Name: "familyName", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
					{Name: "givenName", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
					{Name: "middleName", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
					{Name: "honorificPrefix", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
					{Name: "honorificSuffix", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				},
			},
			{Name: "displayName", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "nickName", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "profileUrl", Type: TypeReference, CaseExact: true, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "title", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "userType", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "preferredLanguage", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "locale", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "timezone", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "active", Type: TypeBoolean, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "password", Type: TypeString, Mutability: MutabilityWriteOnly, Returned: ReturnedNever, CaseExact: true},
			multiValued("emails", namedValueType(false)),
			multiValued("phoneNumbers", namedValueType(false)),
			multiValued("ims", namedValueType(false)),
			multiValued("photos", namedValueType(true)),
			multiValued("addresses", []Attribute{
				{Name: "formatted", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "streetAddress", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "locality", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "region", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "postalCode", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "country", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "type", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
				{Name: "primary", Type: TypeBoolean, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			}),
			multiValued("entitlements", namedValueType(true)),
			multiValued("roles", namedValueType(false)),
			multiValued("x509Certificates", namedValueType(true)),
			{
				Name: "groups", Type: TypeComplex, MultiValued: true, Mutability: MutabilityReadOnly, Returned: ReturnedDefault,
				SubAttributes: []Attribute{
					{Name: "value", Type: TypeString, CaseExact: true, Mutability: MutabilityReadOnly, Returned: ReturnedDefault},
					{Name: "$ref", Type: TypeReference, CaseExact: true, Mutability: MutabilityReadOnly, Returned: ReturnedDefault},
					{Name: "display", Type: TypeString, Mutability: MutabilityReadOnly, Returned: ReturnedDefault},
					{Name: "type", Type: TypeString, Mutability: MutabilityReadOnly, Returned: ReturnedDefault},
				},
			},
		},
	}
}

func enterpriseUserSchema() Schema {
	return Schema{
		ID:   enterpriseUserURN,
		Name: "EnterpriseUser",
		Attributes: []Attribute{
			{Name: "employeeNumber", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "costCenter", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "organization", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "division", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{Name: "department", Type: TypeString, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
			{
				Name: "manager", Type: TypeComplex, Mutability: MutabilityReadWrite, Returned: ReturnedDefault,
				SubAttributes: []Attribute{
					{Name: "value", Type: TypeString, CaseExact: true, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
					{Name: "$ref", Type: TypeReference, CaseExact: true, Mutability: MutabilityReadWrite, Returned: ReturnedDefault},
					{Name: "displayName", Type: TypeString, Mutability: MutabilityReadOnly, Returned: ReturnedDefault},
				},
			},
		},
	}
}

func groupSchema() Schema {
	return Schema{
		ID:   GroupURN,
		Name: "Group",
		Attributes: []Attribute{
			readOnlyID(),
			externalID(),
			{Name: "displayName", Type: TypeString, Required: true, CaseExact: false, Mutability: MutabilityReadWrite, Returned: ReturnedDefault, Uniqueness: UniquenessServer},
			{
				Name: "members", Type: TypeComplex, MultiValued: true, Mutability: MutabilityReadWrite, Returned: ReturnedDefault,
				SubAttributes: []Attribute{
					{Name: "value", Type: TypeString, CaseExact: true, Mutability: MutabilityImmutable, Returned: ReturnedDefault},
					{Name: "$ref", Type: TypeReference, CaseExact: true, Mutability: MutabilityImmutable, Returned: ReturnedDefault},
					{Name: "display", Type: TypeString, Mutability: MutabilityImmutable, Returned: ReturnedDefault},
					{Name: "type", Type: TypeString, CaseExact: false, Mutability: MutabilityImmutable, Returned: ReturnedDefault},
				},
			},
		},
	}
}
