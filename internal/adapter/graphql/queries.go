package graphql

// Query and mutation templates for the platform API. Field selections follow
// the platform schema; anything this client does not render is left out.

const queryGetCanteens = `
query GetCanteens {
  getCanteens {
    id
    name
    location
    description
    contactNumber
    openTime
    closeTime
    rating
    isOpen
  }
}
`

const queryGetMenuItems = `
query GetMenuItems {
  getMenuItems {
    id
    canteenId
    canteenName
    name
    description
    price
    category
    tags
    rating
    ratingCount
    isAvailable
    isPopular
    preparationTime
    customizationOptions
  }
}
`

const queryGetMenuItemsByCanteen = `
query GetMenuItemsByCanteen($canteenId: Int!) {
  getMenuItemsByCanteen(canteenId: $canteenId) {
    id
    canteenId
    canteenName
    name
    description
    price
    category
    tags
    rating
    ratingCount
    isAvailable
    isPopular
    preparationTime
    customizationOptions
  }
}
`

const queryGetMenuItemByID = `
query GetMenuItemById($itemId: Int!) {
  getMenuItemById(itemId: $itemId) {
    id
    canteenId
    canteenName
    name
    description
    price
    category
    tags
    rating
    ratingCount
    isAvailable
    isPopular
    preparationTime
    customizationOptions
  }
}
`

const queryGetCartByUserID = `
query GetCartByUserId($userId: Int!) {
  getCartByUserId(userId: $userId) {
    id
    userId
    pickupDate
    pickupTime
    items {
      id
      menuItemId
      quantity
      selectedSize
      selectedExtras
      specialInstructions
    }
  }
}
`

const queryGetUserByEmail = `
query GetUserByEmail($email: String!) {
  getUserByEmail(email: $email) {
    id
    name
    email
    role
    department
    canteenCredits
    isActive
  }
}
`

const mutationCreateOrder = `
mutation CreateOrder(
  $userId: Int!,
  $canteenId: Int!,
  $items: [OrderItemInput!]!,
  $paymentMethod: String!,
  $phone: String!,
  $customerNote: String,
  $isPreOrder: Boolean,
  $pickupTime: String
) {
  createOrder(
    userId: $userId,
    canteenId: $canteenId,
    items: $items,
    paymentMethod: $paymentMethod,
    phone: $phone,
    customerNote: $customerNote,
    isPreOrder: $isPreOrder,
    pickupTime: $pickupTime
  ) {
    success
    message
    orderId
  }
}
`

const mutationUpdateOrderStatus = `
mutation UpdateOrderStatus($orderId: Int!, $status: String!, $currentUserId: Int!) {
  updateOrderStatus(orderId: $orderId, status: $status, currentUserId: $currentUserId) {
    success
    message
    orderId
  }
}
`

const mutationCancelOrder = `
mutation CancelOrder($orderId: Int!, $userId: Int!, $reason: String!) {
  cancelOrder(orderId: $orderId, userId: $userId, reason: $reason) {
    success
    message
    orderId
  }
}
`
