package graph

// Named query/mutation bodies: one string constant per operation
// rather than building queries dynamically, so every wire shape is
// reviewable in one place.

const queryResolveIssueNodeID = `
query ResolveIssueNodeID($owner: String!, $name: String!, $number: Int!) {
  repository(owner: $owner, name: $name) {
    issue(number: $number) {
      id
    }
  }
}`

const queryIssueHierarchy = `
query IssueHierarchy($owner: String!, $name: String!, $number: Int!) {
  repository(owner: $owner, name: $name) {
    issue(number: $number) {
      id
      parent {
        number
      }
      subIssues(first: 100) {
        nodes {
          number
        }
      }
    }
  }
}`

const mutationAddSubIssue = `
mutation AddSubIssue($issueId: ID!, $subIssueId: ID!) {
  addSubIssue(input: { issueId: $issueId, subIssueId: $subIssueId }) {
    issue {
      id
    }
  }
}`

const mutationRemoveSubIssue = `
mutation RemoveSubIssue($issueId: ID!, $subIssueId: ID!) {
  removeSubIssue(input: { issueId: $issueId, subIssueId: $subIssueId }) {
    issue {
      id
    }
  }
}`

const queryResolveRepositoryID = `
query ResolveRepositoryID($owner: String!, $name: String!) {
  repository(owner: $owner, name: $name) {
    id
  }
}`

const mutationCreateIssueWithType = `
mutation CreateIssueWithType($repositoryId: ID!, $title: String!, $body: String!, $issueTypeId: ID!) {
  createIssue(input: {
    repositoryId: $repositoryId
    title: $title
    body: $body
    issueTypeId: $issueTypeId
  }) {
    issue {
      id
      number
    }
  }
}`

const queryIssueTypes = `
query IssueTypes($owner: String!) {
  organization(login: $owner) {
    issueTypes(first: 50) {
      nodes {
        id
        name
      }
    }
  }
}`

const queryIssueKind = `
query IssueKind($owner: String!, $name: String!, $number: Int!) {
  repository(owner: $owner, name: $name) {
    issue(number: $number) {
      issueType {
        name
      }
    }
  }
}`

const queryOrganizationID = `
query OrganizationID($login: String!) {
  organization(login: $login) {
    id
  }
}`

const mutationCreateIssueType = `
mutation CreateIssueType($ownerId: ID!, $name: String!) {
  createIssueType(input: { ownerId: $ownerId, name: $name, isEnabled: true }) {
    issueType {
      id
      name
    }
  }
}`

const mutationSetIssueType = `
mutation SetIssueType($issueId: ID!, $issueTypeId: ID!) {
  updateIssueIssueType(input: { issueId: $issueId, issueTypeId: $issueTypeId }) {
    issue {
      id
    }
  }
}`

const queryProjectV2Item = `
query ProjectV2Item($issueId: ID!) {
  node(id: $issueId) {
    ... on Issue {
      projectItems(first: 10) {
        nodes {
          id
          project {
            id
          }
        }
      }
    }
  }
}`

const mutationAddIssueToProject = `
mutation AddIssueToProject($projectId: ID!, $contentId: ID!) {
  addProjectV2ItemById(input: { projectId: $projectId, contentId: $contentId }) {
    item {
      id
    }
  }
}`

const mutationUpdateProjectV2ItemFieldValue = `
mutation UpdateProjectV2ItemFieldValue($projectId: ID!, $itemId: ID!, $fieldId: ID!, $value: ProjectV2FieldValue!) {
  updateProjectV2ItemFieldValue(input: {
    projectId: $projectId
    itemId: $itemId
    fieldId: $fieldId
    value: $value
  }) {
    projectV2Item {
      id
    }
  }
}`
